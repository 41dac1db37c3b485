package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradecouncil/internal/config/loader"
	"tradecouncil/internal/gateway/provider"
	textutil "tradecouncil/internal/pkg/text"
)

// rationaleLimit caps how much reply text is carried into a vote.
const rationaleLimit = 480

// NarrativeAgent issues one model call per Produce and deterministically
// parses the free-text reply into a vote. A transport failure surfaces as
// an error (the ensemble degrades it); a reply with no recognizable
// action is not an error and resolves to HOLD with confidence 0.
type NarrativeAgent struct {
	name     string
	personas *loader.PersonaSet
	provider provider.ModelProvider
	timeout  time.Duration
}

func NewNarrativeAgent(name string, personas *loader.PersonaSet, p provider.ModelProvider, timeout time.Duration) *NarrativeAgent {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NarrativeAgent{name: strings.ToLower(name), personas: personas, provider: p, timeout: timeout}
}

func (a *NarrativeAgent) Name() string { return a.name }
func (a *NarrativeAgent) Kind() string { return "narrative" }

func (a *NarrativeAgent) buildPrompt(ticker string, actx Context) provider.ChatPayload {
	persona, ok := a.personas.Get(a.name)
	if !ok {
		persona = loader.Persona{Name: a.name}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Ticker: %s\n", strings.ToUpper(ticker))
	fmt.Fprintf(&b, "Analyze this stock for a 1-3 month swing trade")
	if actx.Risk != "" {
		fmt.Fprintf(&b, " given risk=%s", strings.ToLower(actx.Risk))
	}
	if actx.Budget > 0 {
		fmt.Fprintf(&b, ", budget=$%.0f", actx.Budget)
	}
	b.WriteString(".\n")
	if note := strings.TrimSpace(actx.Note); note != "" {
		fmt.Fprintf(&b, "Note: %s\n", note)
	}
	if g := strings.TrimSpace(persona.Guidance); g != "" {
		b.WriteString(g)
		b.WriteString("\n")
	}
	b.WriteString("Give 2-4 concise sentences of rationale. Then end with two lines exactly like:\n")
	b.WriteString("Confidence: NN%\n")
	b.WriteString("Final action: buy|sell|hold\n")
	return provider.ChatPayload{System: persona.SystemPrompt(), User: b.String()}
}

func (a *NarrativeAgent) Produce(ctx context.Context, ticker string, actx Context) (Vote, error) {
	if a.provider == nil || !a.provider.Enabled() {
		return Vote{}, fmt.Errorf("%s: no model provider configured", a.name)
	}
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	reply, err := a.provider.Call(callCtx, a.buildPrompt(ticker, actx))
	if err != nil {
		return Vote{}, fmt.Errorf("%s: model call: %w", a.name, err)
	}
	reply = strings.TrimSpace(reply)
	action, recognized := ParseAction(reply)
	confidence := ParseConfidence(reply)
	if !recognized {
		// reply received but unusable: degraded HOLD, not a failure
		action = ActionHold
		confidence = 0
	}
	return Vote{
		Agent:      a.name,
		Action:     action,
		Confidence: confidence,
		Rationale:  textutil.Truncate(reply, rationaleLimit),
	}, nil
}
