package membership

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func drawMember(t *rapid.T) Member {
	id := rapid.IntRange(1, 1000).Draw(t, "id")
	if rapid.Bool().Draw(t, "premium") {
		return NewPremiumMember(testProfile(id), "Coach")
	}
	return NewRegularMember(testProfile(id), "Friend")
}

// applyRandomOp runs one randomly chosen policy operation on m.
func applyRandomOp(t *rapid.T, m *Member, label string) {
	switch rapid.IntRange(0, 8).Draw(t, label) {
	case 0:
		m.Activate()
	case 1:
		m.Deactivate()
	case 2:
		m.MarkAttendance()
	case 3:
		_, _ = m.UpgradePlan(rapid.SampledFrom([]string{"basic", "standard", "deluxe", "premium", "gold"}).Draw(t, label+"-plan"))
	case 4:
		_, _ = m.PayDueAmount(rapid.Float64Range(1, 60000).Draw(t, label+"-amount"))
	case 5:
		_, _ = m.CalculateDiscount()
	case 6:
		_, _ = m.RevertRegular("reason")
	case 7:
		_, _ = m.RevertPremium()
	case 8:
		_, _ = m.PayDueAmount(m.RemainingAmount())
	}
}

func TestPropertyInactiveAttendanceChangesNothing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := drawMember(t)
		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			applyRandomOp(t, &m, fmt.Sprintf("op%d", i))
		}
		m.Deactivate()

		before := m.Clone()
		out, err := m.MarkAttendance()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Code != OutcomeInactive {
			t.Fatalf("expected inactive outcome, got %s", out.Code)
		}
		if before.Profile != m.Profile || !equalTerms(before, m) {
			t.Fatalf("inactive attendance changed member: %+v -> %+v", before, m)
		}
	})
}

func TestPropertyPremiumPaymentBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewPremiumMember(testProfile(1), "Coach")
		payments := rapid.SliceOfN(rapid.Float64Range(0.01, 60000), 0, 20).Draw(t, "payments")

		prev := 0.0
		for _, amt := range payments {
			before := m.Clone()
			out, err := m.PayDueAmount(amt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			p := m.Premium
			if p.PaidAmount < prev || p.PaidAmount > p.PremiumCharge {
				t.Fatalf("paid amount %v out of bounds (prev %v)", p.PaidAmount, prev)
			}
			if p.IsFullPayment != (p.PaidAmount == p.PremiumCharge) {
				t.Fatalf("full payment flag %v inconsistent with paid %v", p.IsFullPayment, p.PaidAmount)
			}
			if !out.Accepted() && !equalTerms(before, m) {
				t.Fatalf("rejected payment %v mutated state", amt)
			}
			prev = p.PaidAmount
		}
	})
}

func TestPropertyEligibilityFollowsAttendance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewRegularMember(testProfile(1), "")
		m.Activate()
		n := rapid.IntRange(0, 60).Draw(t, "visits")
		for i := 0; i < n; i++ {
			m.MarkAttendance()
		}

		if m.AttendanceCount != n {
			t.Fatalf("attendance %d, want %d", m.AttendanceCount, n)
		}
		if m.LoyaltyPoints != float64(n)*RegularPointsPerVisit {
			t.Fatalf("points %v, want %v", m.LoyaltyPoints, float64(n)*RegularPointsPerVisit)
		}
		if m.Regular.IsEligibleForUpgrade != (n >= RegularAttendanceLimit) {
			t.Fatalf("eligibility %v after %d visits", m.Regular.IsEligibleForUpgrade, n)
		}
	})
}

func TestPropertyReversionIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := drawMember(t)
		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			applyRandomOp(t, &m, fmt.Sprintf("op%d", i))
		}

		revert := func() {
			if m.Kind == KindRegular {
				_, _ = m.RevertRegular("left")
			} else {
				_, _ = m.RevertPremium()
			}
		}
		revert()
		once := m.Clone()
		revert()

		if !equalTerms(once, m) || once.Profile != m.Profile || once.IsActive || m.AttendanceCount != 0 || m.LoyaltyPoints != 0 {
			t.Fatalf("second reversion changed state: %+v -> %+v", once, m)
		}
	})
}

func TestPropertyRegistryFindMissing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := NewRegistry()
		ids := rapid.SliceOfNDistinct(rapid.IntRange(0, 100), 0, 10, rapid.ID[int]).Draw(t, "ids")
		present := map[int]bool{}
		for _, id := range ids {
			r.Add(NewRegularMember(testProfile(id), ""))
			present[id] = true
		}

		q := rapid.IntRange(-50, 150).Draw(t, "query")
		_, err := r.Find(q)
		if present[q] && err != nil {
			t.Fatalf("expected to find %d: %v", q, err)
		}
		if !present[q] && err == nil {
			t.Fatalf("found %d which was never added", q)
		}
	})
}

func equalTerms(a, b Member) bool {
	if a.AttendanceCount != b.AttendanceCount || a.LoyaltyPoints != b.LoyaltyPoints || a.IsActive != b.IsActive {
		return false
	}
	if (a.Regular == nil) != (b.Regular == nil) || (a.Premium == nil) != (b.Premium == nil) {
		return false
	}
	if a.Regular != nil && *a.Regular != *b.Regular {
		return false
	}
	if a.Premium != nil && *a.Premium != *b.Premium {
		return false
	}
	return true
}
