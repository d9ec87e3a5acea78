package compliance

import (
	"go.uber.org/zap"

	"github.com/fixsecurity/fixsentry/internal/fix"
)

// Rule is a regulatory or operational policy check. Matching and
// evaluation are separate operations so that only applicable rules are
// scored.
type Rule interface {
	RuleID() string
	Name() string
	Matches(msg *fix.Message) bool
	Evaluate(msg *fix.Message) RuleEvaluation
}

// Engine evaluates messages against an ordered rule list. Rules run in
// registration order and never short-circuit: a violation does not stop
// later rules from being scored. Evaluation is deterministic for a given
// message and rule set.
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEngine creates an engine loaded with the given rules, or with the
// default regulatory rule set when none are supplied.
func NewEngine(logger *zap.Logger, rules ...Rule) *Engine {
	e := &Engine{logger: logger}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	for _, r := range rules {
		e.AddRule(r)
	}
	return e
}

// AddRule appends a rule to the end of the evaluation order. There is no
// bound on rule count and no deduplication by rule id.
func (e *Engine) AddRule(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate runs every matching rule against the message. Individual rules
// communicate failure through their evaluation result; the engine itself
// never fails.
func (e *Engine) Evaluate(msg *fix.Message) *Result {
	result := newResult()
	for _, rule := range e.rules {
		if !rule.Matches(msg) {
			continue
		}
		ev := rule.Evaluate(msg)
		result.add(ev)
		if !ev.Compliant {
			e.logger.Warn("compliance violation",
				zap.String("rule_id", ev.RuleID),
				zap.String("session_id", msg.SessionID()),
				zap.String("reason", ev.Message))
		}
	}
	return result
}
