package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/reefboard/internal/cli"
)

var flagActivityJSON bool

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "List recently active agent sessions",
	RunE:  runActivity,
}

func init() {
	activityCmd.Flags().BoolVar(&flagActivityJSON, "json", false, "Print the raw activity payload")
	rootCmd.AddCommand(activityCmd)
}

func runActivity(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dash, err := newDashboard(cfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliFetchTimeout)
	defer cancel()

	report, err := dash.Activity(ctx)
	if err != nil {
		return fmt.Errorf("fetching activity: %w", err)
	}

	if flagActivityJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println()
	if len(report.Sessions) == 0 {
		fmt.Println(cli.RenderWarning("No recent sessions"))
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(report.Sessions))
	for _, s := range report.Sessions {
		rows = append(rows, []string{
			s.AgentName, s.TruncatedKey, s.Kind, s.Model,
			cli.FormatTokens(s.Messages), s.LastActivity,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Recent Sessions (%s)", cli.FormatNumber(int64(report.Count))),
		Headers: []string{"Agent", "Session", "Kind", "Model", "Tokens", "Last Active"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
