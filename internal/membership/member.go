// internal/membership/member.go
package membership

import "fmt"

// Activate marks the membership active. Activating an active member has no further effect.
func (m *Member) Activate() Outcome {
	m.IsActive = true
	return ok(fmt.Sprintf("Membership activated for member %d", m.ID))
}

// Deactivate marks the membership inactive if it is active.
func (m *Member) Deactivate() Outcome {
	if m.IsActive {
		m.IsActive = false
	}
	return ok(fmt.Sprintf("Membership deactivated for member %d", m.ID))
}

// MarkAttendance records one visit using the accrual rule of the member's kind.
// Inactive members are left unchanged.
func (m *Member) MarkAttendance() (Outcome, error) {
	if err := m.checkVariant(); err != nil {
		return Outcome{}, err
	}
	if !m.IsActive {
		return rejected(OutcomeInactive, "Cannot mark attendance for inactive membership"), nil
	}

	switch m.Kind {
	case KindRegular:
		m.AttendanceCount++
		m.LoyaltyPoints += RegularPointsPerVisit
		if m.AttendanceCount >= m.Regular.AttendanceLimit {
			m.Regular.IsEligibleForUpgrade = true
		}
	case KindPremium:
		m.AttendanceCount++
		m.LoyaltyPoints += PremiumPointsPerVisit
	}

	return ok(fmt.Sprintf("Attendance marked. Current attendance: %d, loyalty points: %.1f",
		m.AttendanceCount, m.LoyaltyPoints)), nil
}

// resetMember clears the shared behavioural state. Only the reversions call it.
func (m *Member) resetMember() {
	m.IsActive = false
	m.AttendanceCount = 0
	m.LoyaltyPoints = 0
}

func (m *Member) requireKind(k Kind) error {
	if err := m.checkVariant(); err != nil {
		return err
	}
	if m.Kind != k {
		return fmt.Errorf("member %d is not a %s member: %w", m.ID, k, ErrWrongKind)
	}
	return nil
}

// checkVariant reports a kind without exactly its own terms attached.
func (m *Member) checkVariant() error {
	switch m.Kind {
	case KindRegular:
		if m.Regular != nil && m.Premium == nil {
			return nil
		}
	case KindPremium:
		if m.Premium != nil && m.Regular == nil {
			return nil
		}
	default:
		return fmt.Errorf("member %d has unknown kind %q: %w", m.ID, m.Kind, ErrInvalidRecord)
	}
	return fmt.Errorf("member %d: %s record must carry only %s terms: %w", m.ID, m.Kind, m.Kind, ErrInvalidRecord)
}

// Validate checks the invariants every reachable member state satisfies.
// Snapshot loading uses it to refuse records no sequence of operations
// could have produced.
func (m Member) Validate() error {
	if err := m.checkVariant(); err != nil {
		return err
	}
	if m.AttendanceCount < 0 || m.LoyaltyPoints < 0 {
		return fmt.Errorf("member %d has negative attendance or points: %w", m.ID, ErrInvalidRecord)
	}

	if m.Kind == KindRegular {
		r := m.Regular
		if r.AttendanceLimit != RegularAttendanceLimit {
			return fmt.Errorf("member %d: attendance limit %d, want %d: %w",
				m.ID, r.AttendanceLimit, RegularAttendanceLimit, ErrInvalidRecord)
		}
		price, found := PlanPrice(r.Plan)
		if !found {
			return fmt.Errorf("member %d: unknown plan %q: %w", m.ID, r.Plan, ErrInvalidRecord)
		}
		if r.Price != price {
			return fmt.Errorf("member %d: price %.2f does not match the %s plan: %w", m.ID, r.Price, r.Plan, ErrInvalidRecord)
		}
		if r.IsEligibleForUpgrade && m.AttendanceCount < r.AttendanceLimit {
			return fmt.Errorf("member %d: eligible for upgrade after only %d visits: %w", m.ID, m.AttendanceCount, ErrInvalidRecord)
		}
		return nil
	}

	p := m.Premium
	if p.PremiumCharge != PremiumCharge {
		return fmt.Errorf("member %d: premium charge %.2f, want %.2f: %w", m.ID, p.PremiumCharge, PremiumCharge, ErrInvalidRecord)
	}
	if p.PaidAmount < 0 || p.PaidAmount > p.PremiumCharge {
		return fmt.Errorf("member %d: paid amount %.2f outside [0, %.2f]: %w", m.ID, p.PaidAmount, p.PremiumCharge, ErrInvalidRecord)
	}
	if p.IsFullPayment != (p.PaidAmount == p.PremiumCharge) {
		return fmt.Errorf("member %d: full payment flag disagrees with paid amount %.2f: %w", m.ID, p.PaidAmount, ErrInvalidRecord)
	}
	if p.DiscountAmount != 0 && (!p.IsFullPayment || p.DiscountAmount != PremiumDiscountRate*p.PremiumCharge) {
		return fmt.Errorf("member %d: discount %.2f does not match a completed payment: %w", m.ID, p.DiscountAmount, ErrInvalidRecord)
	}
	return nil
}
