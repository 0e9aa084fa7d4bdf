// internal/membership/domain.go
package membership

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("member not found")
	ErrWrongKind     = errors.New("operation does not apply to this kind of member")
	ErrDuplicateID   = errors.New("member ID already exists")
	ErrValidation    = errors.New("validation failed")
	ErrRateLimited   = errors.New("rate limit exceeded")
	ErrEmptyRegistry = errors.New("no members to save")
	ErrInvalidRecord = errors.New("inconsistent member record")
)

// Kind discriminates the member variants.
type Kind string

const (
	KindRegular Kind = "regular"
	KindPremium Kind = "premium"
)

// Gender is one of the two values the registration form offers.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender matches case-insensitively and reports whether s names a known gender.
func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	}
	return "", false
}

const (
	RegularAttendanceLimit = 25
	RegularPointsPerVisit  = 5.0
	PremiumPointsPerVisit  = 10.0

	PremiumCharge       = 50000.0
	PremiumDiscountRate = 0.10

	DefaultPlan = "basic"
)

// Profile holds the identity fields captured at registration.
type Profile struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	Location            string `json:"location"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	Gender              Gender `json:"gender"`
	DateOfBirth         string `json:"date_of_birth"`
	MembershipStartDate string `json:"membership_start_date"`
}

// Member is a gym member of either kind. Exactly one of Regular and Premium
// is set, matching Kind.
type Member struct {
	Profile
	Kind            Kind          `json:"kind"`
	AttendanceCount int           `json:"attendance_count"`
	LoyaltyPoints   float64       `json:"loyalty_points"`
	IsActive        bool          `json:"is_active"`
	Regular         *RegularTerms `json:"regular,omitempty"`
	Premium         *PremiumTerms `json:"premium,omitempty"`
}

// RegularTerms are the plan and upgrade fields of a regular member.
type RegularTerms struct {
	AttendanceLimit      int     `json:"attendance_limit"`
	Plan                 string  `json:"plan"`
	Price                float64 `json:"price"`
	IsEligibleForUpgrade bool    `json:"is_eligible_for_upgrade"`
	RemovalReason        string  `json:"removal_reason"`
	ReferralSource       string  `json:"referral_source"`
}

// PremiumTerms are the payment fields of a premium member.
type PremiumTerms struct {
	PremiumCharge   float64 `json:"premium_charge"`
	PersonalTrainer string  `json:"personal_trainer"`
	PaidAmount      float64 `json:"paid_amount"`
	IsFullPayment   bool    `json:"is_full_payment"`
	DiscountAmount  float64 `json:"discount_amount"`
}

// NewRegularMember returns an inactive regular member on the basic plan.
func NewRegularMember(p Profile, referralSource string) Member {
	return Member{
		Profile: p,
		Kind:    KindRegular,
		Regular: &RegularTerms{
			AttendanceLimit: RegularAttendanceLimit,
			Plan:            DefaultPlan,
			Price:           planPrices[DefaultPlan],
			ReferralSource:  referralSource,
		},
	}
}

// NewPremiumMember returns an inactive premium member with nothing paid.
func NewPremiumMember(p Profile, personalTrainer string) Member {
	return Member{
		Profile: p,
		Kind:    KindPremium,
		Premium: &PremiumTerms{
			PremiumCharge:   PremiumCharge,
			PersonalTrainer: personalTrainer,
		},
	}
}

// Clone returns a deep copy so callers never share terms with the registry.
func (m Member) Clone() Member {
	c := m
	if m.Regular != nil {
		r := *m.Regular
		c.Regular = &r
	}
	if m.Premium != nil {
		p := *m.Premium
		c.Premium = &p
	}
	return c
}

// RemainingAmount is the unpaid part of the premium charge, zero for regular members.
func (m Member) RemainingAmount() float64 {
	if m.Premium == nil {
		return 0
	}
	return m.Premium.PremiumCharge - m.Premium.PaidAmount
}
