package sqlxrepos

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core/voicenote"
)

type voiceNoteRow struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	ModuleID        string    `db:"module_id"`
	AudioURL        string    `db:"audio_url"`
	DurationSeconds int       `db:"duration_seconds"`
	IsApproved      bool      `db:"is_approved"`
	CreatedAt       time.Time `db:"created_at"`
}

func (row voiceNoteRow) toVoiceNote() voicenote.VoiceNote {
	return voicenote.VoiceNote{
		ID:              row.ID,
		UserID:          row.UserID,
		ModuleID:        row.ModuleID,
		AudioURL:        row.AudioURL,
		DurationSeconds: row.DurationSeconds,
		IsApproved:      row.IsApproved,
		CreatedAt:       row.CreatedAt,
	}
}

type voiceNoteRepository struct {
	db *sqlx.DB
}

var _ voicenote.Repository = (*voiceNoteRepository)(nil) // interface compliance check

func NewVoiceNoteRepository(db *sqlx.DB) voicenote.Repository {
	return &voiceNoteRepository{db: db}
}

func (repo *voiceNoteRepository) CreateVoiceNote(vn voicenote.VoiceNote) (voicenote.VoiceNote, error) {
	q := `
	INSERT INTO voice_notes (id, user_id, module_id, audio_url, duration_seconds, is_approved, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.Exec(q, vn.ID, vn.UserID, vn.ModuleID, vn.AudioURL, vn.DurationSeconds, vn.IsApproved, vn.CreatedAt)
	if err != nil {
		return voicenote.VoiceNote{}, errors.Wrap(err, "creating voice note")
	}
	return vn, nil
}

func (repo *voiceNoteRepository) GetVoiceNoteByID(id string) (voicenote.VoiceNote, error) {
	var row voiceNoteRow
	if err := repo.db.Get(&row, `SELECT * FROM voice_notes WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return voicenote.VoiceNote{}, voicenote.ErrNotFound
		}
		return voicenote.VoiceNote{}, errors.Wrap(err, "getting voice note")
	}
	return row.toVoiceNote(), nil
}

func (repo *voiceNoteRepository) FilterVoiceNotes(filter voicenote.QueryFilter) ([]voicenote.VoiceNote, error) {
	var (
		clauses []string
		args    []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.ModuleID != "" {
		clauses = append(clauses, `module_id = `+arg(filter.ModuleID))
	}
	if filter.UserID != "" {
		clauses = append(clauses, `user_id = `+arg(filter.UserID))
	}
	if filter.IsApproved != nil {
		clauses = append(clauses, `is_approved = `+arg(*filter.IsApproved))
	}

	q := `SELECT * FROM voice_notes`
	if len(clauses) > 0 {
		q += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	q += ` ORDER BY created_at DESC`

	var rows []voiceNoteRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering voice notes")
	}
	if rows == nil {
		return nil, nil
	}
	notes := make([]voicenote.VoiceNote, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, row.toVoiceNote())
	}
	return notes, nil
}

func (repo *voiceNoteRepository) SetVoiceNoteApproved(id string, approved bool) (voicenote.VoiceNote, error) {
	var row voiceNoteRow
	err := repo.db.Get(&row, `UPDATE voice_notes SET is_approved = $2 WHERE id = $1 RETURNING *`, id, approved)
	if err != nil {
		if err == sql.ErrNoRows {
			return voicenote.VoiceNote{}, voicenote.ErrNotFound
		}
		return voicenote.VoiceNote{}, errors.Wrap(err, "approving voice note")
	}
	return row.toVoiceNote(), nil
}

func (repo *voiceNoteRepository) DeleteVoiceNotesByID(ids ...string) error {
	_, err := repo.db.Exec(`DELETE FROM voice_notes WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting voice notes")
}
