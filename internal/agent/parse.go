package agent

import (
	"regexp"
	"strconv"
	"strings"
)

// Free-text reply parsing. The contract with narrative agents is loose by
// nature, so this stays a pure function with the fallback chain spelled
// out rather than trying to be clever about malformed replies.

var (
	actionLineRe = regexp.MustCompile(`(?i)final\s*action\s*:\s*(buy|sell|hold)\b`)
	confidenceRe = regexp.MustCompile(`(?i)confidence\s*[:=]\s*(\d{1,3})\s*%`)
)

// ParseAction extracts the directional call from a reply. Preference
// order: an explicit "Final action: ..." line; otherwise the first of
// buy/sell/hold (in that priority) appearing anywhere in the text;
// otherwise hold. The second return reports whether anything matched.
func ParseAction(text string) (Action, bool) {
	if m := actionLineRe.FindStringSubmatch(text); m != nil {
		return Action(strings.ToLower(m[1])), true
	}
	low := strings.ToLower(text)
	for _, a := range []Action{ActionBuy, ActionSell, ActionHold} {
		if strings.Contains(low, string(a)) {
			return a, true
		}
	}
	return ActionHold, false
}

// ParseConfidence reads an optional "Confidence: NN%" marker, clamped to
// [0,1]. A missing marker defaults to 0.5.
func ParseConfidence(text string) float64 {
	m := confidenceRe.FindStringSubmatch(text)
	if m == nil {
		return 0.5
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0.5
	}
	if n > 100 {
		n = 100
	}
	if n < 0 {
		n = 0
	}
	return float64(n) / 100.0
}
