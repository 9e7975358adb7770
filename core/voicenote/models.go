package voicenote

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// VoiceNote is a short audio reflection a staff member attaches to a module.
// Audio capture and upload happen elsewhere; AudioURL is opaque here.
type VoiceNote struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ModuleID        string    `json:"module_id"`
	AudioURL        string    `json:"audio_url"`
	DurationSeconds int       `json:"duration_seconds"`
	IsApproved      bool      `json:"is_approved"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

// NewVoiceNote contains information needed to create a new VoiceNote.
type NewVoiceNote struct {
	ModuleID        string `json:"module_id" validate:"required"`
	AudioURL        string `json:"audio_url" validate:"required,url"`
	DurationSeconds int    `json:"duration_seconds" validate:"required,min=1,max=120"`
}

func (nv *NewVoiceNote) Validate(validate *validator.Validate) error {
	return validate.Struct(nv)
}

type QueryFilter struct {
	ModuleID   string `query:"module_id"`
	UserID     string `query:"-"`
	IsApproved *bool  `query:"-"`
}
