package membership

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryFindOnEmpty(t *testing.T) {
	r := NewRegistry()
	for _, id := range []int{0, 1, -1, 42} {
		_, err := r.Find(id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestRegistryPreservesInsertionOrder(t *testing.T) {
	r := NewRegistry()
	r.Add(NewRegularMember(testProfile(3), ""))
	r.Add(NewPremiumMember(testProfile(1), "Coach"))
	r.Add(NewRegularMember(testProfile(2), ""))

	var ids []int
	for _, m := range r.All() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int{3, 1, 2}, ids)
	assert.Equal(t, 3, r.Len())
}

func TestRegistryFirstMatchWins(t *testing.T) {
	r := NewRegistry()
	first := NewRegularMember(testProfile(7), "first")
	second := NewPremiumMember(testProfile(7), "second")
	r.Add(first)
	r.Add(second)

	m, err := r.Find(7)
	require.NoError(t, err)
	assert.Equal(t, KindRegular, m.Kind)
	assert.Equal(t, "first", m.Regular.ReferralSource)
}

func TestRegistryAddIfAbsent(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.AddIfAbsent(NewRegularMember(testProfile(1), "")))
	assert.False(t, r.AddIfAbsent(NewPremiumMember(testProfile(1), "Coach")))
	assert.Equal(t, 1, r.Len())
}

func TestRegistryReturnsCopies(t *testing.T) {
	r := NewRegistry()
	r.Add(NewRegularMember(testProfile(1), ""))

	m, err := r.Find(1)
	require.NoError(t, err)
	m.IsActive = true
	m.Regular.Plan = "deluxe"

	all := r.All()
	all[0].Regular.Price = 1

	stored, err := r.Find(1)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, "basic", stored.Regular.Plan)
	assert.Equal(t, 6500.0, stored.Regular.Price)
}

func TestRegistryUpdate(t *testing.T) {
	r := NewRegistry()
	r.Add(NewRegularMember(testProfile(1), ""))

	m, out, err := r.Update(1, func(m *Member) (Outcome, error) {
		return m.Activate(), nil
	})
	require.NoError(t, err)
	assert.True(t, out.Accepted())
	assert.True(t, m.IsActive)

	stored, _ := r.Find(1)
	assert.True(t, stored.IsActive)

	_, _, err = r.Update(99, func(m *Member) (Outcome, error) {
		t.Fatal("transition must not run for a missing member")
		return Outcome{}, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryUpdateDiscardsFailedTransition(t *testing.T) {
	r := NewRegistry()
	r.Add(NewRegularMember(testProfile(1), ""))

	m, _, err := r.Update(1, func(m *Member) (Outcome, error) {
		m.IsActive = true
		m.AttendanceCount = 10
		return Outcome{}, ErrWrongKind
	})
	require.ErrorIs(t, err, ErrWrongKind)
	assert.False(t, m.IsActive)

	stored, _ := r.Find(1)
	assert.False(t, stored.IsActive)
	assert.Zero(t, stored.AttendanceCount)
}

func TestRegistryReplaceAll(t *testing.T) {
	r := NewRegistry()
	r.Add(NewRegularMember(testProfile(1), ""))

	r.ReplaceAll([]Member{NewPremiumMember(testProfile(5), "Coach"), NewRegularMember(testProfile(6), "")})

	_, err := r.Find(1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryConcurrentUpdatesAreNotLost(t *testing.T) {
	r := NewRegistry()
	m := NewPremiumMember(testProfile(1), "Coach")
	m.Activate()
	r.Add(m)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = r.Update(1, func(m *Member) (Outcome, error) {
				return m.MarkAttendance()
			})
		}()
	}
	wg.Wait()

	stored, err := r.Find(1)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.AttendanceCount)
	assert.Equal(t, 500.0, stored.LoyaltyPoints)
}
