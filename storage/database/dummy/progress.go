package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/mazoezi/core"
	"github.com/trezcool/mazoezi/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) GetProgress(ctx context.Context, userID string) (progress.UserProgress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[userID]; ok {
		return clone(*p), nil
	}
	return progress.UserProgress{}, progress.ErrNotFound
}

// UpsertProgress enforces the version precondition under the table lock:
// a record may only be written with the version it was read at, and each
// successful write bumps the stored version.
func (repo *progressRepository) UpsertProgress(ctx context.Context, p progress.UserProgress) (progress.UserProgress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, exists := repo.db.table[p.UserID]
	if p.Version == 0 {
		if exists {
			return progress.UserProgress{}, progress.ErrConflict
		}
	} else {
		if !exists || stored.Version != p.Version {
			return progress.UserProgress{}, progress.ErrConflict
		}
	}

	p.Version++
	saved := clone(p)
	repo.db.table[p.UserID] = &saved
	return clone(saved), nil
}

func (repo *progressRepository) QueryProgress(ctx context.Context, ord core.DBOrdering, limit int) ([]progress.UserProgress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]progress.UserProgress, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		records = append(records, clone(*p))
	}

	sort.SliceStable(records, func(i, j int) bool {
		var less bool
		switch ord.Field {
		case "last_activity_date":
			less = records[i].LastActivityDate.Before(records[j].LastActivityDate)
		default: // total_points
			less = records[i].TotalPoints < records[j].TotalPoints
		}
		if ord.Ascending {
			return less
		}
		return !less
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// clone deep-copies the slices so callers cannot mutate stored records.
func clone(p progress.UserProgress) progress.UserProgress {
	p.ModulesCompleted = append([]string(nil), p.ModulesCompleted...)
	p.Badges = append([]string(nil), p.Badges...)
	p.DecksViewed = append([]string(nil), p.DecksViewed...)
	return p
}
