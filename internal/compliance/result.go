package compliance

import "time"

// RuleEvaluation is the immutable outcome of one rule applied to one
// message.
type RuleEvaluation struct {
	RuleID    string    `json:"rule_id"`
	RuleName  string    `json:"rule_name"`
	Compliant bool      `json:"compliant"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Result aggregates the evaluations of every rule that matched a message.
// It is compliant only when every contained evaluation is.
type Result struct {
	Evaluations []RuleEvaluation `json:"evaluations"`
	Compliant   bool             `json:"compliant"`
}

func newResult() *Result {
	return &Result{Compliant: true}
}

func (r *Result) add(ev RuleEvaluation) {
	r.Evaluations = append(r.Evaluations, ev)
	if !ev.Compliant {
		r.Compliant = false
	}
}
