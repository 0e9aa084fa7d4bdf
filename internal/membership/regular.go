// internal/membership/regular.go
package membership

import (
	"fmt"
	"strings"
)

var planPrices = map[string]float64{
	"basic":    6500.0,
	"standard": 12500.0,
	"deluxe":   18500.0,
}

// PlanPrice looks up the price of a regular plan, ignoring case.
// ok is false for any name outside basic, standard and deluxe.
func PlanPrice(plan string) (price float64, ok bool) {
	price, ok = planPrices[strings.ToLower(strings.TrimSpace(plan))]
	return price, ok
}

// UpgradePlan moves an eligible regular member to another plan. Eligibility
// is kept, so the member may change plans again later.
func (m *Member) UpgradePlan(newPlan string) (Outcome, error) {
	if err := m.requireKind(KindRegular); err != nil {
		return Outcome{}, err
	}
	r := m.Regular

	if !r.IsEligibleForUpgrade {
		return rejected(OutcomeNotEligible, "Member is not eligible for upgrade."), nil
	}
	if strings.EqualFold(strings.TrimSpace(newPlan), r.Plan) {
		return rejected(OutcomeAlreadyOnPlan, fmt.Sprintf("Member is already on the %s plan.", r.Plan)), nil
	}
	price, found := PlanPrice(newPlan)
	if !found {
		return rejected(OutcomeInvalidPlan, "Invalid plan selected."), nil
	}

	r.Plan = strings.ToLower(strings.TrimSpace(newPlan))
	r.Price = price

	out := ok(fmt.Sprintf("Plan upgraded to %s with price %.2f", r.Plan, price))
	out.Plan = r.Plan
	out.Price = amount(price)
	return out, nil
}

// RevertRegular resets a regular member back to the basic plan and records why.
func (m *Member) RevertRegular(removalReason string) (Outcome, error) {
	if err := m.requireKind(KindRegular); err != nil {
		return Outcome{}, err
	}
	if strings.TrimSpace(removalReason) == "" {
		return Outcome{}, fmt.Errorf("removal reason is required: %w", ErrValidation)
	}

	m.resetMember()
	r := m.Regular
	r.IsEligibleForUpgrade = false
	r.Plan = DefaultPlan
	r.Price = planPrices[DefaultPlan]
	r.RemovalReason = strings.TrimSpace(removalReason)

	return ok(fmt.Sprintf("Regular member %d reverted", m.ID)), nil
}
