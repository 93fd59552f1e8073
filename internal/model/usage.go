// Package model defines domain types for reefboard usage and dashboard payloads.
package model

// SessionRecord is one session as reported by a session lister.
// Key has the form "agent:<agentId>:<...>".
type SessionRecord struct {
	Key          string `json:"key"`
	Kind         string `json:"kind,omitempty"`
	Model        string `json:"model,omitempty"`
	InputTokens  int64  `json:"inputTokens"`
	OutputTokens int64  `json:"outputTokens"`
	TotalTokens  int64  `json:"totalTokens"`
	AgeMs        int64  `json:"ageMs"`
}

// ModelUsage accumulates token counts and cost for one model string.
type ModelUsage struct { //nolint:revive // mirrors the JSON payload name
	Model            string  `json:"model"`
	PromptTokens     int64   `json:"promptTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	TotalTokens      int64   `json:"totalTokens"`
	Cost             float64 `json:"cost"`
}

// UsageSummary is the ranked per-model fold of a session batch.
type UsageSummary struct {
	TotalCost        float64      `json:"totalCost"`
	TotalPrompts     int64        `json:"totalPrompts"`
	TotalCompletions int64        `json:"totalCompletions"`
	TotalTokens      int64        `json:"totalTokens"`
	ModelBreakdown   []ModelUsage `json:"modelBreakdown"`
}

// Agent is a row of the agent table printed by the agent CLI.
type Agent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Active string `json:"active"`
}

// AgentSummary is an Agent enriched with its attributed usage.
type AgentSummary struct {
	Agent
	Cost          float64      `json:"cost"`
	TokenCount    int64        `json:"tokenCount"`
	ModelUsage    []ModelUsage `json:"modelUsage"`
	SessionsCount int          `json:"sessionsCount"`
}
