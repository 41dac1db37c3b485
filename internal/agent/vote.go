// Package agent runs the decision ensemble: a fixed registry of rule-based
// and narrative (LLM-persona) agents, concurrent per-ticker fan-out, and a
// deterministic scoring rule over the collected votes.
package agent

import "context"

// Action is an agent's directional call.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionHold Action = "hold"
	ActionSell Action = "sell"
)

// value maps actions onto the voting axis.
func (a Action) value() float64 {
	switch a {
	case ActionBuy:
		return 1
	case ActionSell:
		return -1
	default:
		return 0
	}
}

// Vote is one agent's opinion for one ticker in one request. Votes are
// never persisted across requests.
type Vote struct {
	Agent      string  `json:"agent"`
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// TickerDecision aggregates the votes for one ticker. FinalAction and
// FinalScore are derived deterministically from Votes.
type TickerDecision struct {
	Ticker      string  `json:"ticker"`
	Votes       []Vote  `json:"decisions"`
	FinalAction Action  `json:"final_vote"`
	FinalScore  float64 `json:"final_score"`
}

// Context carries the request-scoped hints agents may use.
type Context struct {
	Budget   float64
	Risk     string
	Note     string
	Range    string
	Interval string
}

// Agent is the single capability every ensemble member implements.
// Rule-based agents compute deterministically; narrative agents issue one
// external model call and parse the reply. A returned error is degraded
// to a HOLD/0 vote by the ensemble, never propagated to the caller.
type Agent interface {
	Name() string
	Kind() string // "rule" | "narrative"
	Produce(ctx context.Context, ticker string, actx Context) (Vote, error)
}
