package model

import "encoding/json"

// StatusReport is the payload of the agent status endpoint.
type StatusReport struct {
	Agents       []AgentSummary `json:"agents"`
	UsageSummary UsageSummary   `json:"usageSummary"`
	Timestamp    string         `json:"timestamp"`
}

// ActivitySession is a recently active session, shaped for display.
type ActivitySession struct {
	AgentID      string `json:"agentId"`
	AgentName    string `json:"agentName"`
	SessionKey   string `json:"sessionKey"`
	TruncatedKey string `json:"truncatedKey"`
	Messages     int64  `json:"messages"`
	LastActivity string `json:"lastActivity"`
	Kind         string `json:"kind"`
	Model        string `json:"model"`
	AgeMs        int64  `json:"ageMs"`
}

// ActivityReport is the payload of the agent activity endpoint.
type ActivityReport struct {
	Sessions  []ActivitySession `json:"sessions"`
	Count     int               `json:"count"`
	Timestamp string            `json:"timestamp"`
}

// Brief holds upcoming calendar events and unread mail. Items are passed
// through as the calendar and mail tools emit them.
type Brief struct {
	Events    []json.RawMessage `json:"events"`
	Emails    []json.RawMessage `json:"emails"`
	Timestamp string            `json:"timestamp"`
}

// Market is a trending prediction market.
type Market struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Image     string `json:"image"`
	YesChance *int   `json:"yesChance"`
	Category  string `json:"category"`
}
