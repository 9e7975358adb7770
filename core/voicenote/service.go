package voicenote

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core/progress"
)

var ErrNotFound = errors.New("voice note not found")

type (
	Repository interface {
		CreateVoiceNote(vn VoiceNote) (VoiceNote, error)
		GetVoiceNoteByID(id string) (VoiceNote, error)
		// FilterVoiceNotes returns notes newest first, filtered by the set fields.
		FilterVoiceNotes(filter QueryFilter) ([]VoiceNote, error)
		SetVoiceNoteApproved(id string, approved bool) (VoiceNote, error)
		DeleteVoiceNotesByID(ids ...string) error
	}

	Service interface {
		// Create stores the note and bumps the user's voice-note counter,
		// the metric the badge evaluator reads.
		Create(ctx context.Context, userID string, nv NewVoiceNote) (VoiceNote, error)
		GetByID(id string) (VoiceNote, error)
		ListApproved(moduleID string) ([]VoiceNote, error)
		ListPending() ([]VoiceNote, error)
		Approve(id string) (VoiceNote, error)
		// Reject discards a pending note. The voice-note counter is not
		// decremented; badges are threshold crossings, never revoked.
		Reject(id string) error
		Delete(ids ...string) error
	}

	service struct {
		repo        Repository
		progressSvc progress.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, progressSvc progress.Service) Service {
	return &service{repo: repo, progressSvc: progressSvc}
}

func (svc *service) Create(ctx context.Context, userID string, nv NewVoiceNote) (VoiceNote, error) {
	vn := VoiceNote{
		ID:              uuid.NewString(),
		UserID:          userID,
		ModuleID:        nv.ModuleID,
		AudioURL:        nv.AudioURL,
		DurationSeconds: nv.DurationSeconds,
		CreatedAt:       time.Now().UTC(),
	}
	vn, err := svc.repo.CreateVoiceNote(vn)
	if err != nil {
		return VoiceNote{}, err
	}

	if _, err = svc.progressSvc.IncrementVoiceNotes(ctx, userID, 1); err != nil {
		return vn, errors.Wrap(err, "incrementing voice note count")
	}
	return vn, nil
}

func (svc *service) GetByID(id string) (VoiceNote, error) {
	return svc.repo.GetVoiceNoteByID(id)
}

func (svc *service) ListApproved(moduleID string) ([]VoiceNote, error) {
	approved := true
	return svc.repo.FilterVoiceNotes(QueryFilter{ModuleID: moduleID, IsApproved: &approved})
}

func (svc *service) ListPending() ([]VoiceNote, error) {
	approved := false
	return svc.repo.FilterVoiceNotes(QueryFilter{IsApproved: &approved})
}

func (svc *service) Approve(id string) (VoiceNote, error) {
	return svc.repo.SetVoiceNoteApproved(id, true)
}

func (svc *service) Reject(id string) error {
	return svc.repo.DeleteVoiceNotesByID(id)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteVoiceNotesByID(ids...)
}
