// internal/membership/validation.go
package membership

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the only accepted form for dates (yyyy-MM-dd).
const DateLayout = "2006-01-02"

// ProfileInput is the registration form shared by both kinds of member.
type ProfileInput struct {
	ID                  *int   `json:"id" validate:"required"`
	Name                string `json:"name" validate:"required"`
	Location            string `json:"location" validate:"required"`
	Phone               string `json:"phone" validate:"required"`
	Email               string `json:"email" validate:"required,email"`
	Gender              string `json:"gender" validate:"required,oneof=male female"`
	DateOfBirth         string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	MembershipStartDate string `json:"membership_start_date" validate:"required,datetime=2006-01-02"`
}

type RegularInput struct {
	ProfileInput
	Plan           string `json:"plan"`
	ReferralSource string `json:"referral_source"`
}

type PremiumInput struct {
	ProfileInput
	PersonalTrainer string   `json:"personal_trainer" validate:"required"`
	InitialPayment  *float64 `json:"initial_payment,omitempty" validate:"omitempty,gt=0"`
}

func (in *ProfileInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.MembershipStartDate = strings.TrimSpace(in.MembershipStartDate)
}

func (in ProfileInput) profile() Profile {
	g, _ := ParseGender(in.Gender)
	return Profile{
		ID:                  *in.ID,
		Name:                in.Name,
		Location:            in.Location,
		Phone:               in.Phone,
		Email:               in.Email,
		Gender:              g,
		DateOfBirth:         in.DateOfBirth,
		MembershipStartDate: in.MembershipStartDate,
	}
}

type inputValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

func newInputValidator(now func() time.Time) *inputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &inputValidator{validate: v, now: now}
}

func (iv *inputValidator) regular(in *RegularInput) error {
	in.normalize()
	in.Plan = strings.TrimSpace(in.Plan)
	in.ReferralSource = strings.TrimSpace(in.ReferralSource)

	if err := iv.validate.Struct(in); err != nil {
		return validationError(err)
	}
	if in.Plan != "" {
		if _, ok := PlanPrice(in.Plan); !ok {
			return fmt.Errorf("plan %q is not a regular plan: %w", in.Plan, ErrValidation)
		}
	}
	return iv.dateOfBirth(in.DateOfBirth)
}

func (iv *inputValidator) premium(in *PremiumInput) error {
	in.normalize()
	in.PersonalTrainer = strings.TrimSpace(in.PersonalTrainer)

	if err := iv.validate.Struct(in); err != nil {
		return validationError(err)
	}
	return iv.dateOfBirth(in.DateOfBirth)
}

func (iv *inputValidator) positiveAmount(amt float64) error {
	if err := iv.validate.Var(amt, "gt=0"); err != nil {
		return fmt.Errorf("payment amount must be positive: %w", ErrValidation)
	}
	return nil
}

func (iv *inputValidator) dateOfBirth(dob string) error {
	t, err := time.Parse(DateLayout, dob)
	if err != nil {
		return fmt.Errorf("date_of_birth must be in format yyyy-MM-dd: %w", ErrValidation)
	}
	if t.After(iv.now()) {
		return fmt.Errorf("date_of_birth cannot be in the future: %w", ErrValidation)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%v: %w", err, ErrValidation)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), ErrValidation)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be in format yyyy-MM-dd", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be positive", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
