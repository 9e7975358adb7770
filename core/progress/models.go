package progress

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core"
)

var (
	// ErrNotFound means no progress record exists for the user yet.
	ErrNotFound = errors.New("progress not found")

	// ErrInvalidEvent rejects malformed events before any store read.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrStoreUnavailable is a transient store failure; the whole logical
	// operation may be retried by the caller.
	ErrStoreUnavailable = errors.New("progress store unavailable")

	// ErrConflict means the optimistic-concurrency precondition failed.
	ErrConflict = errors.New("concurrent progress update conflict")
)

// UserProgress is the per-user progress aggregate. It is created lazily on the
// first qualifying event and mutated only through the Service; Version is the
// optimistic-concurrency token checked by Repository.UpsertProgress.
type UserProgress struct {
	UserID           string    `json:"user_id"`
	ModulesCompleted []string  `json:"modules_completed"` // set semantics
	CurrentStreak    int       `json:"current_streak"`
	LongestStreak    int       `json:"longest_streak"`
	LastActivityDate core.Date `json:"last_activity_date"`
	TotalPoints      int       `json:"total_points"`
	Badges           []string  `json:"badges"`       // set semantics, append-only
	DecksViewed      []string  `json:"decks_viewed"` // set semantics
	VoiceNotesCount  int       `json:"voice_notes_count"`
	Version          int       `json:"-"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
}

// HasCompleted reports whether the module is in the completed set.
func (p *UserProgress) HasCompleted(moduleID string) bool {
	return contains(p.ModulesCompleted, moduleID)
}

func (p *UserProgress) HasBadge(badgeID string) bool {
	return contains(p.Badges, badgeID)
}

func contains(set []string, id string) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

// union adds id to set if absent; insertion order is preserved.
func union(set []string, id string) []string {
	if contains(set, id) {
		return set
	}
	return append(set, id)
}

// CompletionEvent is a "module finished" event.
type CompletionEvent struct {
	UserID   string
	ModuleID string
	Today    core.Date
}

func (e CompletionEvent) Validate() error {
	var flds []core.FieldError
	if e.UserID == "" {
		flds = append(flds, core.FieldError{Field: "user_id", Error: "this field is required"})
	}
	if e.ModuleID == "" {
		flds = append(flds, core.FieldError{Field: "module_id", Error: "this field is required"})
	}
	if e.Today.IsZero() {
		flds = append(flds, core.FieldError{Field: "today", Error: "this field is required"})
	}
	if flds != nil {
		return core.NewValidationError(ErrInvalidEvent, flds...)
	}
	return nil
}

// OpenEvent is an "app opened today" event; it feeds the streak but awards no points.
type OpenEvent struct {
	UserID string
	Today  core.Date
}

func (e OpenEvent) Validate() error {
	var flds []core.FieldError
	if e.UserID == "" {
		flds = append(flds, core.FieldError{Field: "user_id", Error: "this field is required"})
	}
	if e.Today.IsZero() {
		flds = append(flds, core.FieldError{Field: "today", Error: "this field is required"})
	}
	if flds != nil {
		return core.NewValidationError(ErrInvalidEvent, flds...)
	}
	return nil
}

// Result is the outcome of a recorded event: the merged aggregate plus the
// badge ids newly awarded by this call, for immediate "badge earned" feedback.
type Result struct {
	Progress  UserProgress `json:"progress"`
	NewBadges []string     `json:"new_badges"`
}
