// internal/membership/premium.go
package membership

import "fmt"

// PayDueAmount applies a payment towards the premium charge. The caller
// guarantees amount > 0. A payment that would overshoot the charge is
// rejected whole.
func (m *Member) PayDueAmount(amt float64) (Outcome, error) {
	if err := m.requireKind(KindPremium); err != nil {
		return Outcome{}, err
	}
	p := m.Premium

	if p.IsFullPayment {
		return rejected(OutcomePaymentCompleted, "Payment already completed."), nil
	}
	if p.PaidAmount+amt > p.PremiumCharge {
		allowed := p.PremiumCharge - p.PaidAmount
		out := rejected(OutcomeExceedsCharge,
			fmt.Sprintf("Amount exceeds premium charge. Maximum allowed: %.2f", allowed))
		out.Allowed = amount(allowed)
		return out, nil
	}

	p.PaidAmount += amt
	if p.PaidAmount == p.PremiumCharge {
		p.IsFullPayment = true
	}
	remaining := p.PremiumCharge - p.PaidAmount

	out := ok(fmt.Sprintf("Payment successful. Remaining amount: %.2f", remaining))
	out.Remaining = amount(remaining)
	return out, nil
}

// CalculateDiscount computes the full-payment discount. The discount is
// reported only; nothing deducts it from the paid amount.
func (m *Member) CalculateDiscount() (Outcome, error) {
	if err := m.requireKind(KindPremium); err != nil {
		return Outcome{}, err
	}
	p := m.Premium

	if !p.IsFullPayment {
		return rejected(OutcomeNoDiscount, "No discount available. Full payment not made."), nil
	}

	p.DiscountAmount = PremiumDiscountRate * p.PremiumCharge
	out := ok(fmt.Sprintf("Discount calculated: %.2f", p.DiscountAmount))
	out.Discount = amount(p.DiscountAmount)
	return out, nil
}

// RevertPremium clears the trainer and all payment state.
func (m *Member) RevertPremium() (Outcome, error) {
	if err := m.requireKind(KindPremium); err != nil {
		return Outcome{}, err
	}

	m.resetMember()
	p := m.Premium
	p.PersonalTrainer = ""
	p.IsFullPayment = false
	p.PaidAmount = 0
	p.DiscountAmount = 0

	return ok(fmt.Sprintf("Premium member %d reverted", m.ID)), nil
}
