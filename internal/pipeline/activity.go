package pipeline

import (
	"sort"
	"strings"

	"github.com/theirongolddev/reefboard/internal/cli"
	"github.com/theirongolddev/reefboard/internal/model"
)

// Activity shapes session records for display, most recent first.
func Activity(sessions []model.SessionRecord) []model.ActivitySession {
	out := make([]model.ActivitySession, 0, len(sessions))
	for _, s := range sessions {
		agentID := AgentIDFromKey(s.Key)
		out = append(out, model.ActivitySession{
			AgentID:      agentID,
			AgentName:    cli.CapitalizeFirst(agentID),
			SessionKey:   s.Key,
			TruncatedKey: cli.TruncateKey(s.Key, 12),
			Messages:     s.TotalTokens,
			LastActivity: cli.FormatAge(s.AgeMs),
			Kind:         s.Kind,
			Model:        s.Model,
			AgeMs:        s.AgeMs,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AgeMs < out[j].AgeMs
	})
	return out
}

// AgentIDFromKey returns the second ":"-separated segment of a session key,
// or "" when the key has none.
func AgentIDFromKey(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
