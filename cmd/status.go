package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/reefboard/internal/cli"
)

const cliFetchTimeout = 30 * time.Second

var flagStatusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agents and token spend",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagStatusJSON, "json", false, "Print the raw status payload")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
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

	report, err := dash.Status(ctx)
	if err != nil {
		return fmt.Errorf("fetching status: %w", err)
	}

	if flagStatusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	sum := report.UsageSummary

	fmt.Println()
	fmt.Println(cli.RenderTitle("REEFBOARD STATUS"))
	fmt.Println()
	fmt.Println(cli.RenderKV("Total cost", cli.FormatCost(sum.TotalCost)))
	fmt.Println(cli.RenderKV("Tokens", fmt.Sprintf("%s (%s in / %s out)",
		cli.FormatTokens(sum.TotalTokens), cli.FormatTokens(sum.TotalPrompts), cli.FormatTokens(sum.TotalCompletions))))
	fmt.Println()

	agentRows := make([][]string, 0, len(report.Agents))
	for _, a := range report.Agents {
		agentRows = append(agentRows, []string{
			a.Name, a.Role, a.Status, a.Active,
			strconv.Itoa(a.SessionsCount),
			cli.FormatTokens(a.TokenCount),
			cli.FormatCost(a.Cost),
		})
	}
	if len(agentRows) == 0 {
		fmt.Println(cli.RenderWarning("No agents reported"))
	} else {
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Agents",
			Headers: []string{"Agent", "Role", "Status", "Active", "Sessions", "Tokens", "Cost"},
			Rows:    agentRows,
		}))
	}

	if len(sum.ModelBreakdown) > 0 {
		maxCost := sum.ModelBreakdown[0].Cost
		fmt.Println()
		fmt.Println(cli.RenderTitle("COST BY MODEL"))
		fmt.Println()
		for _, m := range sum.ModelBreakdown {
			line := cli.RenderHorizontalBar(m.Model, m.Cost, maxCost, 30)
			if sum.TotalCost > 0 {
				line += "  " + cli.FormatPercent(m.Cost/sum.TotalCost)
			}
			fmt.Println(line)
		}
	}

	fmt.Printf("\n  Fetched at %s\n\n", report.Timestamp)
	return nil
}
