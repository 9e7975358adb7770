package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core"
	"github.com/trezcool/mazoezi/core/progress"
)

// pqUniqueViolation is raised when two writers race to insert the same user's
// first record; surfaced as a version conflict so the service retries.
const pqUniqueViolation = "23505"

type progressRow struct {
	UserID           string         `db:"user_id"`
	ModulesCompleted pq.StringArray `db:"modules_completed"`
	CurrentStreak    int            `db:"current_streak"`
	LongestStreak    int            `db:"longest_streak"`
	LastActivityDate core.Date      `db:"last_activity_date"`
	TotalPoints      int            `db:"total_points"`
	Badges           pq.StringArray `db:"badges"`
	DecksViewed      pq.StringArray `db:"decks_viewed"`
	VoiceNotesCount  int            `db:"voice_notes_count"`
	Version          int            `db:"version"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (row progressRow) toProgress() progress.UserProgress {
	return progress.UserProgress{
		UserID:           row.UserID,
		ModulesCompleted: row.ModulesCompleted,
		CurrentStreak:    row.CurrentStreak,
		LongestStreak:    row.LongestStreak,
		LastActivityDate: row.LastActivityDate,
		TotalPoints:      row.TotalPoints,
		Badges:           row.Badges,
		DecksViewed:      row.DecksViewed,
		VoiceNotesCount:  row.VoiceNotesCount,
		Version:          row.Version,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) GetProgress(ctx context.Context, userID string) (progress.UserProgress, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM user_progress WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return progress.UserProgress{}, progress.ErrNotFound
		}
		return progress.UserProgress{}, storeErr(err, "getting progress")
	}
	return row.toProgress(), nil
}

func (repo *progressRepository) UpsertProgress(ctx context.Context, p progress.UserProgress) (progress.UserProgress, error) {
	if p.Version == 0 {
		return repo.insert(ctx, p)
	}
	return repo.update(ctx, p)
}

func (repo *progressRepository) insert(ctx context.Context, p progress.UserProgress) (progress.UserProgress, error) {
	q := `
	INSERT INTO user_progress (user_id, modules_completed, current_streak, longest_streak, last_activity_date,
	                           total_points, badges, decks_viewed, voice_notes_count, version, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11)
	RETURNING *`
	var row progressRow
	err := repo.db.GetContext(ctx, &row, q,
		p.UserID, pq.StringArray(p.ModulesCompleted), p.CurrentStreak, p.LongestStreak, p.LastActivityDate,
		p.TotalPoints, pq.StringArray(p.Badges), pq.StringArray(p.DecksViewed), p.VoiceNotesCount,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return progress.UserProgress{}, progress.ErrConflict
		}
		return progress.UserProgress{}, storeErr(err, "inserting progress")
	}
	return row.toProgress(), nil
}

func (repo *progressRepository) update(ctx context.Context, p progress.UserProgress) (progress.UserProgress, error) {
	q := `
	UPDATE user_progress
	SET modules_completed = $3,
	    current_streak = $4,
	    longest_streak = $5,
	    last_activity_date = $6,
	    total_points = $7,
	    badges = $8,
	    decks_viewed = $9,
	    voice_notes_count = $10,
	    version = version + 1,
	    updated_at = $11
	WHERE user_id = $1 AND version = $2
	RETURNING *`
	var row progressRow
	err := repo.db.GetContext(ctx, &row, q,
		p.UserID, p.Version, pq.StringArray(p.ModulesCompleted), p.CurrentStreak, p.LongestStreak,
		p.LastActivityDate, p.TotalPoints, pq.StringArray(p.Badges), pq.StringArray(p.DecksViewed),
		p.VoiceNotesCount, p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			// record gone or overwritten since our read
			return progress.UserProgress{}, progress.ErrConflict
		}
		return progress.UserProgress{}, storeErr(err, "updating progress")
	}
	return row.toProgress(), nil
}

func (repo *progressRepository) QueryProgress(ctx context.Context, ord core.DBOrdering, limit int) ([]progress.UserProgress, error) {
	q := `SELECT * FROM user_progress ORDER BY ` + ord.String()
	args := make([]interface{}, 0, 1)
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	var rows []progressRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, storeErr(err, "querying progress")
	}
	if rows == nil {
		return nil, nil
	}
	records := make([]progress.UserProgress, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toProgress())
	}
	return records, nil
}

// storeErr maps a driver failure to ErrStoreUnavailable while keeping the
// underlying detail in the message.
func storeErr(err error, msg string) error {
	return errors.Wrapf(progress.ErrStoreUnavailable, "%s: %v", msg, err)
}
