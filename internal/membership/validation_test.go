package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func validProfileInput(id int) ProfileInput {
	return ProfileInput{
		ID:                  intPtr(id),
		Name:                "  Saimon Oli ",
		Location:            "Itahari",
		Phone:               "9707565286",
		Email:               "saimon@example.com",
		Gender:              "Male",
		DateOfBirth:         "2005-05-18",
		MembershipStartDate: "2025-04-01",
	}
}

func fixedValidator() *inputValidator {
	return newInputValidator(func() time.Time {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	})
}

func TestValidateRegularNormalizes(t *testing.T) {
	in := RegularInput{ProfileInput: validProfileInput(1), Plan: " Standard "}
	require.NoError(t, fixedValidator().regular(&in))

	assert.Equal(t, "Saimon Oli", in.Name)
	assert.Equal(t, "male", in.Gender)
	assert.Equal(t, "Standard", in.Plan)
	assert.Equal(t, GenderMale, in.profile().Gender)
}

func TestValidateRegularRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegularInput)
		msg    string
	}{
		{name: "missing id", mutate: func(in *RegularInput) { in.ID = nil }, msg: "id is required"},
		{name: "blank name", mutate: func(in *RegularInput) { in.Name = "   " }, msg: "name is required"},
		{name: "blank location", mutate: func(in *RegularInput) { in.Location = "" }, msg: "location is required"},
		{name: "blank phone", mutate: func(in *RegularInput) { in.Phone = "" }, msg: "phone is required"},
		{name: "bad email", mutate: func(in *RegularInput) { in.Email = "not-an-email" }, msg: "email must be a valid email address"},
		{name: "unknown gender", mutate: func(in *RegularInput) { in.Gender = "other" }, msg: "gender must be one of"},
		{name: "bad date", mutate: func(in *RegularInput) { in.DateOfBirth = "18/05/2005" }, msg: "date_of_birth must be in format yyyy-MM-dd"},
		{name: "impossible date", mutate: func(in *RegularInput) { in.MembershipStartDate = "2025-02-30" }, msg: "membership_start_date must be in format yyyy-MM-dd"},
		{name: "future birth", mutate: func(in *RegularInput) { in.DateOfBirth = "2030-01-01" }, msg: "cannot be in the future"},
		{name: "premium plan", mutate: func(in *RegularInput) { in.Plan = "Premium" }, msg: "is not a regular plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := RegularInput{ProfileInput: validProfileInput(1)}
			tt.mutate(&in)

			err := fixedValidator().regular(&in)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidatePremium(t *testing.T) {
	v := fixedValidator()

	in := PremiumInput{ProfileInput: validProfileInput(1), PersonalTrainer: " Coach Ram "}
	require.NoError(t, v.premium(&in))
	assert.Equal(t, "Coach Ram", in.PersonalTrainer)

	in = PremiumInput{ProfileInput: validProfileInput(1)}
	err := v.premium(&in)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "personal_trainer is required")

	neg := -5.0
	in = PremiumInput{ProfileInput: validProfileInput(1), PersonalTrainer: "Coach", InitialPayment: &neg}
	err = v.premium(&in)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "initial_payment must be positive")
}

func TestValidatePositiveAmount(t *testing.T) {
	v := fixedValidator()
	assert.NoError(t, v.positiveAmount(0.5))
	assert.ErrorIs(t, v.positiveAmount(0), ErrValidation)
	assert.ErrorIs(t, v.positiveAmount(-10), ErrValidation)
}
