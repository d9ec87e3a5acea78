package compliance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fixsecurity/fixsentry/internal/fix"
)

// DefaultMaxOrderQty is the pre-trade order size limit in units.
var DefaultMaxOrderQty = decimal.NewFromInt(1_000_000)

// DefaultRules returns the built-in regulatory rule set in evaluation
// order.
func DefaultRules() []Rule {
	return []Rule{
		&BestExecutionRule{},
		&OrderSizeLimitRule{MaxOrderQty: DefaultMaxOrderQty},
		&RequiredFieldsRule{},
	}
}

func evaluation(r Rule, compliant bool, message string) RuleEvaluation {
	return RuleEvaluation{
		RuleID:    r.RuleID(),
		RuleName:  r.Name(),
		Compliant: compliant,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// BestExecutionRule is the MiFID II best execution control. It is a
// placeholder: a production deployment would compare the order price
// against a consolidated market feed.
type BestExecutionRule struct{}

func (r *BestExecutionRule) RuleID() string { return "MIFID-II-001" }
func (r *BestExecutionRule) Name() string   { return "Best Execution Check" }

func (r *BestExecutionRule) Matches(msg *fix.Message) bool {
	return msg.MsgType == fix.MsgTypeNewOrderSingle
}

func (r *BestExecutionRule) Evaluate(msg *fix.Message) RuleEvaluation {
	return evaluation(r, true, "Price within acceptable range")
}

// OrderSizeLimitRule flags orders whose quantity exceeds a fixed
// threshold. The comparison runs on decimals so the boundary is exact.
type OrderSizeLimitRule struct {
	MaxOrderQty decimal.Decimal
}

func (r *OrderSizeLimitRule) RuleID() string { return "PRE-TRADE-001" }
func (r *OrderSizeLimitRule) Name() string   { return "Order Size Limit" }

func (r *OrderSizeLimitRule) Matches(msg *fix.Message) bool {
	return msg.MsgType == fix.MsgTypeNewOrderSingle
}

func (r *OrderSizeLimitRule) Evaluate(msg *fix.Message) RuleEvaluation {
	qty := decimal.NewFromFloat(msg.OrderQty)
	if qty.GreaterThan(r.MaxOrderQty) {
		return evaluation(r, false,
			fmt.Sprintf("Order size %s exceeds limit %s", qty, r.MaxOrderQty))
	}
	return evaluation(r, true, "Order size within limits")
}

// RequiredFieldsRule checks the minimum field set every order must carry.
type RequiredFieldsRule struct{}

func (r *RequiredFieldsRule) RuleID() string { return "DATA-QUALITY-001" }
func (r *RequiredFieldsRule) Name() string   { return "Required Fields Check" }

func (r *RequiredFieldsRule) Matches(msg *fix.Message) bool {
	return msg.MsgType == fix.MsgTypeNewOrderSingle
}

func (r *RequiredFieldsRule) Evaluate(msg *fix.Message) RuleEvaluation {
	var missing []string
	if msg.Symbol == "" {
		missing = append(missing, "Symbol")
	}
	if msg.Side == "" {
		missing = append(missing, "Side")
	}
	if msg.OrderQty <= 0 {
		missing = append(missing, "OrderQty")
	}

	if len(missing) > 0 {
		return evaluation(r, false,
			"Missing required fields: "+strings.Join(missing, ", "))
	}
	return evaluation(r, true, "All required fields present")
}
