package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

// Gog reads calendar events and unread mail through the gog CLI.
type Gog struct {
	Runner  Runner
	Bin     string
	Account string
	Max     int
}

// NewGog returns a Gog client for account.
func NewGog(r Runner, bin, account string) *Gog {
	if bin == "" {
		bin = "gog"
	}
	return &Gog{Runner: r, Bin: bin, Account: account, Max: 5}
}

func (g *Gog) baseArgs() []string {
	args := []string{"--max", strconv.Itoa(g.Max)}
	if g.Account != "" {
		args = append(args, "-a", g.Account)
	}
	return append(args, "-j", "--results-only")
}

// Events returns today's upcoming calendar events.
func (g *Gog) Events(ctx context.Context) ([]json.RawMessage, error) {
	args := append([]string{"calendar", "list"}, g.baseArgs()...)
	args = append(args, "--from", "today")
	out, err := g.Runner.Run(ctx, g.Bin, args...)
	if err != nil {
		return nil, fmt.Errorf("listing calendar: %w", err)
	}
	return decodeItems("calendar", out), nil
}

// UnreadMail returns unread inbox messages.
func (g *Gog) UnreadMail(ctx context.Context) ([]json.RawMessage, error) {
	args := append([]string{"gmail", "list", "is:unread label:inbox"}, g.baseArgs()...)
	out, err := g.Runner.Run(ctx, g.Bin, args...)
	if err != nil {
		return nil, fmt.Errorf("listing mail: %w", err)
	}
	return decodeItems("gmail", out), nil
}

// decodeItems parses a JSON array of objects. Anything else yields an
// empty list.
func decodeItems(what string, data []byte) []json.RawMessage {
	items := []json.RawMessage{}
	if len(data) == 0 {
		return items
	}
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("malformed tool output", "source", what, "err", err)
		return []json.RawMessage{}
	}
	if items == nil {
		return []json.RawMessage{}
	}
	return items
}
