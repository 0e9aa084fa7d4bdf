// internal/membership/outcome.go
package membership

// OutcomeCode classifies the result of a policy operation.
type OutcomeCode string

const (
	OutcomeOK               OutcomeCode = "ok"
	OutcomeInactive         OutcomeCode = "inactive"
	OutcomeNotEligible      OutcomeCode = "not_eligible"
	OutcomeAlreadyOnPlan    OutcomeCode = "already_on_plan"
	OutcomeInvalidPlan      OutcomeCode = "invalid_plan"
	OutcomePaymentCompleted OutcomeCode = "payment_already_completed"
	OutcomeExceedsCharge    OutcomeCode = "exceeds_charge"
	OutcomeNoDiscount       OutcomeCode = "no_discount"
)

// Outcome reports what a policy operation did. Rejections are expected
// results, not errors; a rejected operation leaves the member untouched.
type Outcome struct {
	Code      OutcomeCode `json:"code"`
	Message   string      `json:"message"`
	Plan      string      `json:"plan,omitempty"`
	Price     *float64    `json:"price,omitempty"`
	Remaining *float64    `json:"remaining,omitempty"`
	Allowed   *float64    `json:"allowed,omitempty"`
	Discount  *float64    `json:"discount,omitempty"`
}

// Accepted reports whether the operation committed.
func (o Outcome) Accepted() bool {
	return o.Code == OutcomeOK
}

func ok(msg string) Outcome {
	return Outcome{Code: OutcomeOK, Message: msg}
}

func rejected(code OutcomeCode, msg string) Outcome {
	return Outcome{Code: code, Message: msg}
}

func amount(v float64) *float64 {
	return &v
}
