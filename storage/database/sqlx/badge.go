package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core/badge"
)

type badgeRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Description      string    `db:"description"`
	Icon             string    `db:"icon"`
	RequirementType  string    `db:"requirement_type"`
	RequirementValue int       `db:"requirement_value"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (row badgeRow) toBadge() badge.Badge {
	return badge.Badge{
		ID:               row.ID,
		Name:             row.Name,
		Description:      row.Description,
		Icon:             row.Icon,
		RequirementType:  badge.RequirementType(row.RequirementType),
		RequirementValue: row.RequirementValue,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

type badgeRepository struct {
	db *sqlx.DB
}

var _ badge.Repository = (*badgeRepository)(nil) // interface compliance check

func NewBadgeRepository(db *sqlx.DB) badge.Repository {
	return &badgeRepository{db: db}
}

func (repo *badgeRepository) CreateBadge(b badge.Badge) (badge.Badge, error) {
	q := `
	INSERT INTO badges (id, name, description, icon, requirement_type, requirement_value, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.Exec(q,
		b.ID, b.Name, b.Description, b.Icon, string(b.RequirementType), b.RequirementValue, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return badge.Badge{}, errors.Wrap(err, "creating badge")
	}
	return b, nil
}

func (repo *badgeRepository) QueryAllBadges() ([]badge.Badge, error) {
	var rows []badgeRow
	if err := repo.db.Select(&rows, `SELECT * FROM badges ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying badges")
	}
	if rows == nil {
		return nil, nil
	}
	badges := make([]badge.Badge, 0, len(rows))
	for _, row := range rows {
		badges = append(badges, row.toBadge())
	}
	return badges, nil
}

func (repo *badgeRepository) GetBadgeByID(id string) (badge.Badge, error) {
	var row badgeRow
	if err := repo.db.Get(&row, `SELECT * FROM badges WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return badge.Badge{}, badge.ErrNotFound
		}
		return badge.Badge{}, errors.Wrap(err, "getting badge")
	}
	return row.toBadge(), nil
}

func (repo *badgeRepository) UpdateBadge(b badge.Badge) (badge.Badge, error) {
	q := `
	UPDATE badges
	SET name = $2,
	    description = $3,
	    icon = $4,
	    requirement_type = $5,
	    requirement_value = $6,
	    updated_at = $7
	WHERE id = $1
	RETURNING *`
	var row badgeRow
	err := repo.db.Get(&row, q, b.ID, b.Name, b.Description, b.Icon, string(b.RequirementType), b.RequirementValue, b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return badge.Badge{}, badge.ErrNotFound
		}
		return badge.Badge{}, errors.Wrap(err, "updating badge")
	}
	return row.toBadge(), nil
}

func (repo *badgeRepository) DeleteBadgesByID(ids ...string) error {
	_, err := repo.db.Exec(`DELETE FROM badges WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting badges")
}
