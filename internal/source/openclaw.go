package source

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/theirongolddev/reefboard/internal/model"
)

// AgentLister returns the known agents.
type AgentLister interface {
	ListAgents(ctx context.Context) ([]model.Agent, error)
}

// SessionLister returns recent session records.
type SessionLister interface {
	ListSessions(ctx context.Context) ([]model.SessionRecord, error)
}

// OpenClaw reads agents and sessions through the openclaw CLI.
type OpenClaw struct {
	Runner Runner
	Bin    string

	// ActiveMinutes and Limit bound the session listing.
	ActiveMinutes int
	Limit         int
}

// NewOpenClaw returns an OpenClaw client with the default session window.
func NewOpenClaw(r Runner, bin string) *OpenClaw {
	if bin == "" {
		bin = "openclaw"
	}
	return &OpenClaw{Runner: r, Bin: bin, ActiveMinutes: 1440, Limit: 100}
}

// ListAgents runs `status --all --plain` and parses its agent table.
func (o *OpenClaw) ListAgents(ctx context.Context) ([]model.Agent, error) {
	out, err := o.Runner.Run(ctx, o.Bin, "status", "--all", "--plain")
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	return ParseAgentTable(string(out)), nil
}

// ListSessions runs `sessions list --json` and decodes the result.
func (o *OpenClaw) ListSessions(ctx context.Context) ([]model.SessionRecord, error) {
	out, err := o.Runner.Run(ctx, o.Bin, "sessions", "list",
		"--active-minutes", fmt.Sprint(o.ActiveMinutes),
		"--limit", fmt.Sprint(o.Limit),
		"--json")
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return ParseSessionList(out)
}

type sessionList struct {
	Sessions []model.SessionRecord `json:"sessions"`
}

// ParseSessionList decodes the CLI's {"sessions":[...]} document.
func ParseSessionList(data []byte) ([]model.SessionRecord, error) {
	var list sessionList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing session list: %w", err)
	}
	if list.Sessions == nil {
		return []model.SessionRecord{}, nil
	}
	return list.Sessions, nil
}

var agentNameRe = regexp.MustCompile(`^([^(]+)(?:\(([^)]+)\))?$`)

// ParseAgentTable extracts agents from the box-drawn "Agents" table of
// the status output. The table starts after a header row naming Agent,
// Bootstrap and Sessions and ends at a line starting with "└".
func ParseAgentTable(out string) []model.Agent {
	agents := []model.Agent{}
	inTable := false

	for _, line := range strings.Split(out, "\n") {
		if !inTable {
			if strings.Contains(line, "Agent") && strings.Contains(line, "Bootstrap") && strings.Contains(line, "Sessions") {
				inTable = true
			}
			continue
		}
		if strings.HasPrefix(line, "└") {
			inTable = false
			continue
		}
		if strings.HasPrefix(line, "├") {
			continue
		}

		var parts []string
		for _, p := range strings.Split(line, "│") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) < 4 {
			continue
		}

		agents = append(agents, parseAgentRow(parts))
	}
	return agents
}

func parseAgentRow(parts []string) model.Agent {
	raw := parts[0]
	a := model.Agent{
		ID:     strings.ToLower(raw),
		Name:   raw,
		Status: parts[1],
		Active: parts[3],
	}
	if m := agentNameRe.FindStringSubmatch(raw); m != nil {
		name := strings.TrimSpace(m[1])
		a.ID = strings.ToLower(name)
		a.Name = name
		a.Role = strings.TrimSpace(m[2])
	}
	return a
}
