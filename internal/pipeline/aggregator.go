// Package pipeline folds session records into usage summaries and
// activity listings.
package pipeline

import (
	"sort"
	"strings"

	"github.com/theirongolddev/reefboard/internal/config"
	"github.com/theirongolddev/reefboard/internal/model"
)

// UnknownModel is the bucket for sessions that report no model.
const UnknownModel = "unknown"

// Aggregate folds sessions into a per-model breakdown ranked by cost.
// Ties keep first-seen order. Totals are summed over the breakdown.
func Aggregate(sessions []model.SessionRecord, pricing *config.PricingTable) model.UsageSummary {
	index := make(map[string]int)
	var breakdown []model.ModelUsage

	for _, s := range sessions {
		name := s.Model
		if name == "" {
			name = UnknownModel
		}

		i, ok := index[name]
		if !ok {
			i = len(breakdown)
			index[name] = i
			breakdown = append(breakdown, model.ModelUsage{Model: name})
		}

		in := max(s.InputTokens, 0)
		out := max(s.OutputTokens, 0)
		mu := &breakdown[i]
		mu.PromptTokens += in
		mu.CompletionTokens += out
		mu.TotalTokens += in + out
		mu.Cost += pricing.Cost(s.Model, in, out)
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Cost > breakdown[j].Cost
	})

	summary := model.UsageSummary{ModelBreakdown: breakdown}
	if summary.ModelBreakdown == nil {
		summary.ModelBreakdown = []model.ModelUsage{}
	}
	for _, mu := range breakdown {
		summary.TotalCost += mu.Cost
		summary.TotalPrompts += mu.PromptTokens
		summary.TotalCompletions += mu.CompletionTokens
	}
	summary.TotalTokens = summary.TotalPrompts + summary.TotalCompletions
	return summary
}

// AgentKeyPrefix is the literal session-key prefix attributed to agentID.
func AgentKeyPrefix(agentID string) string {
	return "agent:" + agentID + ":"
}

// FilterByAgent returns the sessions whose key starts with AgentKeyPrefix(agentID).
func FilterByAgent(agentID string, sessions []model.SessionRecord) []model.SessionRecord {
	prefix := AgentKeyPrefix(agentID)
	var out []model.SessionRecord
	for _, s := range sessions {
		if strings.HasPrefix(s.Key, prefix) {
			out = append(out, s)
		}
	}
	return out
}

// AggregateForAgent folds only the sessions attributed to agentID.
func AggregateForAgent(agentID string, sessions []model.SessionRecord, pricing *config.PricingTable) model.UsageSummary {
	return Aggregate(FilterByAgent(agentID, sessions), pricing)
}

// SummarizeAgents enriches each agent with the usage of its sessions.
// Agents keep their listed order.
func SummarizeAgents(agents []model.Agent, sessions []model.SessionRecord, pricing *config.PricingTable) []model.AgentSummary {
	out := make([]model.AgentSummary, 0, len(agents))
	for _, a := range agents {
		owned := FilterByAgent(a.ID, sessions)
		usage := Aggregate(owned, pricing)
		out = append(out, model.AgentSummary{
			Agent:         a,
			Cost:          usage.TotalCost,
			TokenCount:    usage.TotalTokens,
			ModelUsage:    usage.ModelBreakdown,
			SessionsCount: len(owned),
		})
	}
	return out
}
