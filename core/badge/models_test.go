package badge

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mazoezi/core"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()

	eng := en.New()
	translator, ok := ut.New(eng, eng).GetTranslator(eng.Locale())
	if !ok {
		t.Fatal("translator not found")
	}
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestRequirementType_Valid(t *testing.T) {
	tests := []struct {
		rt   RequirementType
		want bool
	}{
		{RequirementModules, true},
		{RequirementStreak, true},
		{RequirementVoiceNotes, true},
		{RequirementPoints, true},
		{RequirementType(""), false},
		{RequirementType("likes"), false},
	}
	for _, tt := range tests {
		t.Run(tt.rt.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rt.Valid())
		})
	}
}

func TestNewBadge_Validate(t *testing.T) {
	validate := newValidator(t)

	tests := []struct {
		name    string
		nb      NewBadge
		wantErr bool
	}{
		{
			name: "valid",
			nb:   NewBadge{Name: "First Steps", RequirementType: RequirementModules, RequirementValue: 1},
		},
		{
			name:    "missing name",
			nb:      NewBadge{RequirementType: RequirementModules, RequirementValue: 1},
			wantErr: true,
		},
		{
			name:    "unknown requirement type",
			nb:      NewBadge{Name: "Hmm", RequirementType: "likes", RequirementValue: 1},
			wantErr: true,
		},
		{
			name:    "zero requirement value",
			nb:      NewBadge{Name: "Hmm", RequirementType: RequirementPoints},
			wantErr: true,
		},
		{
			name:    "negative requirement value",
			nb:      NewBadge{Name: "Hmm", RequirementType: RequirementPoints, RequirementValue: -3},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nb.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateBadge_Validate(t *testing.T) {
	validate := newValidator(t)

	orig := Badge{
		Name:             "Week Warrior",
		Description:      "Keep a 7 day training streak",
		Icon:             "flame",
		RequirementType:  RequirementStreak,
		RequirementValue: 7,
	}

	t.Run("empty fields fall back to the original", func(t *testing.T) {
		ub := UpdateBadge{Name: "Fortnight Warrior", RequirementValue: 14}
		if err := ub.Validate(validate, orig); err != nil {
			t.Fatalf("Validate() failed: %v", err)
		}
		assert.Equal(t, "Fortnight Warrior", ub.Name)
		assert.Equal(t, orig.Description, ub.Description)
		assert.Equal(t, orig.Icon, ub.Icon)
		assert.Equal(t, RequirementStreak, ub.RequirementType)
		assert.Equal(t, 14, ub.RequirementValue)
	})

	t.Run("bad requirement type is rejected", func(t *testing.T) {
		ub := UpdateBadge{RequirementType: "likes"}
		assert.Error(t, ub.Validate(validate, orig))
	})
}
