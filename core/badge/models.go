package badge

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mazoezi/core"
)

// RequirementType is the closed set of metrics a badge can be unlocked on.
type RequirementType string

const (
	RequirementModules    RequirementType = "modules_completed"
	RequirementStreak     RequirementType = "streak"
	RequirementVoiceNotes RequirementType = "voice_notes"
	RequirementPoints     RequirementType = "points"
)

var RequirementTypes = []RequirementType{
	RequirementModules,
	RequirementStreak,
	RequirementVoiceNotes,
	RequirementPoints,
}

func (rt RequirementType) Valid() bool {
	switch rt {
	case RequirementModules, RequirementStreak, RequirementVoiceNotes, RequirementPoints:
		return true
	}
	return false
}

func (rt RequirementType) String() string { return string(rt) }

// Badge is a catalog entry; earning state lives on the user's progress record.
type Badge struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Icon             string          `json:"icon"`
	RequirementType  RequirementType `json:"requirement_type"`
	RequirementValue int             `json:"requirement_value"`
	CreatedAt        time.Time       `json:"created_at"` // UTC
	UpdatedAt        time.Time       `json:"updated_at"` // UTC
}

// NewBadge contains information needed to create a new Badge.
type NewBadge struct {
	Name             string          `json:"name" validate:"required"`
	Description      string          `json:"description"`
	Icon             string          `json:"icon"`
	RequirementType  RequirementType `json:"requirement_type" validate:"required,reqtype"`
	RequirementValue int             `json:"requirement_value" validate:"required,min=1"`
}

func (nb *NewBadge) Validate(validate *validator.Validate) error {
	nb.Name = core.CleanString(nb.Name)
	nb.Description = core.CleanString(nb.Description)
	return validate.Struct(nb)
}

// UpdateBadge defines what information may be provided to modify an existing Badge.
type UpdateBadge struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Icon             string          `json:"icon"`
	RequirementType  RequirementType `json:"requirement_type" validate:"omitempty,reqtype"`
	RequirementValue int             `json:"requirement_value" validate:"omitempty,min=1"`
}

func (ub *UpdateBadge) Validate(validate *validator.Validate, orig Badge) error {
	name := core.CleanString(ub.Name)
	if name != "" {
		ub.Name = name
	} else {
		ub.Name = orig.Name
	}
	if ub.Description == "" {
		ub.Description = orig.Description
	}
	if ub.Icon == "" {
		ub.Icon = orig.Icon
	}
	if ub.RequirementType == "" {
		ub.RequirementType = orig.RequirementType
	}
	if ub.RequirementValue == 0 {
		ub.RequirementValue = orig.RequirementValue
	}
	return validate.Struct(ub)
}
