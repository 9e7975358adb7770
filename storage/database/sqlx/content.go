package sqlxrepos

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mazoezi/core/content"
)

type moduleRow struct {
	ID              string    `db:"id"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Category        string    `db:"category"`
	CoverImage      string    `db:"cover_image"`
	DurationMinutes int       `db:"duration_minutes"`
	SessionDate     null.Time `db:"session_date"`
	IsPublished     bool      `db:"is_published"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (row moduleRow) toModule() content.Module {
	return content.Module{
		ID:              row.ID,
		Title:           row.Title,
		Description:     row.Description,
		Category:        row.Category,
		CoverImage:      row.CoverImage,
		DurationMinutes: row.DurationMinutes,
		SessionDate:     row.SessionDate.Ptr(),
		IsPublished:     row.IsPublished,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

type deckRow struct {
	ID        string    `db:"id"`
	ModuleID  string    `db:"module_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Icon      string    `db:"icon"`
	Order     int       `db:"order"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row deckRow) toDeck() content.Deck {
	return content.Deck{
		ID:        row.ID,
		ModuleID:  row.ModuleID,
		Title:     row.Title,
		Content:   row.Content,
		Icon:      row.Icon,
		Order:     row.Order,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type contentRepository struct {
	db *sqlx.DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *sqlx.DB) content.Repository {
	return &contentRepository{db: db}
}

func (repo *contentRepository) CreateModule(m content.Module) (content.Module, error) {
	q := `
	INSERT INTO modules (id, title, description, category, cover_image, duration_minutes, session_date, is_published, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.Exec(q,
		m.ID, m.Title, m.Description, m.Category, m.CoverImage,
		m.DurationMinutes, null.TimeFromPtr(m.SessionDate), m.IsPublished, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return content.Module{}, errors.Wrap(err, "creating module")
	}
	return m, nil
}

func (repo *contentRepository) GetModuleByID(id string) (content.Module, error) {
	var row moduleRow
	if err := repo.db.Get(&row, `SELECT * FROM modules WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return content.Module{}, content.ErrModuleNotFound
		}
		return content.Module{}, errors.Wrap(err, "getting module")
	}
	return row.toModule(), nil
}

func (repo *contentRepository) FilterModules(filter content.ModuleFilter) ([]content.Module, error) {
	var (
		clauses []string
		args    []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.PublishedOnly {
		clauses = append(clauses, `is_published`)
	}
	if filter.Category != "" {
		clauses = append(clauses, `category = `+arg(filter.Category))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		clauses = append(clauses, `(title ILIKE `+p+` OR description ILIKE `+p+`)`)
	}

	q := `SELECT * FROM modules`
	if len(clauses) > 0 {
		q += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	q += ` ORDER BY session_date DESC NULLS LAST, created_at`

	var rows []moduleRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering modules")
	}
	if rows == nil {
		return nil, nil
	}
	mods := make([]content.Module, 0, len(rows))
	for _, row := range rows {
		mods = append(mods, row.toModule())
	}
	return mods, nil
}

func (repo *contentRepository) UpdateModule(m content.Module, isPublished *bool) (content.Module, error) {
	q := `
	UPDATE modules
	SET title = $2,
	    description = $3,
	    category = $4,
	    cover_image = $5,
	    duration_minutes = $6,
	    session_date = $7,
	    is_published = COALESCE($8, is_published),
	    updated_at = $9
	WHERE id = $1
	RETURNING *`
	var row moduleRow
	err := repo.db.Get(&row, q,
		m.ID, m.Title, m.Description, m.Category, m.CoverImage,
		m.DurationMinutes, null.TimeFromPtr(m.SessionDate), isPublished, m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return content.Module{}, content.ErrModuleNotFound
		}
		return content.Module{}, errors.Wrap(err, "updating module")
	}
	return row.toModule(), nil
}

func (repo *contentRepository) DeleteModulesByID(ids ...string) error {
	// decks go with their module (ON DELETE CASCADE)
	_, err := repo.db.Exec(`DELETE FROM modules WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting modules")
}

func (repo *contentRepository) CreateDeck(d content.Deck) (content.Deck, error) {
	q := `
	INSERT INTO decks (id, module_id, title, content, icon, "order", created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.Exec(q, d.ID, d.ModuleID, d.Title, d.Content, d.Icon, d.Order, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return content.Deck{}, errors.Wrap(err, "creating deck")
	}
	return d, nil
}

func (repo *contentRepository) GetDeckByID(id string) (content.Deck, error) {
	var row deckRow
	if err := repo.db.Get(&row, `SELECT * FROM decks WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return content.Deck{}, content.ErrDeckNotFound
		}
		return content.Deck{}, errors.Wrap(err, "getting deck")
	}
	return row.toDeck(), nil
}

func (repo *contentRepository) QueryDecksByModule(moduleID string) ([]content.Deck, error) {
	var rows []deckRow
	q := `SELECT * FROM decks WHERE module_id = $1 ORDER BY "order"`
	if err := repo.db.Select(&rows, q, moduleID); err != nil {
		return nil, errors.Wrap(err, "querying decks")
	}
	if rows == nil {
		return nil, nil
	}
	decks := make([]content.Deck, 0, len(rows))
	for _, row := range rows {
		decks = append(decks, row.toDeck())
	}
	return decks, nil
}

func (repo *contentRepository) CountDecksByModule(moduleID string) (int, error) {
	var count int
	if err := repo.db.Get(&count, `SELECT COUNT(*) FROM decks WHERE module_id = $1`, moduleID); err != nil {
		return 0, errors.Wrap(err, "counting decks")
	}
	return count, nil
}

func (repo *contentRepository) UpdateDeck(d content.Deck) (content.Deck, error) {
	q := `
	UPDATE decks
	SET title = $2,
	    content = $3,
	    icon = $4,
	    "order" = $5,
	    updated_at = $6
	WHERE id = $1
	RETURNING *`
	var row deckRow
	err := repo.db.Get(&row, q, d.ID, d.Title, d.Content, d.Icon, d.Order, d.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return content.Deck{}, content.ErrDeckNotFound
		}
		return content.Deck{}, errors.Wrap(err, "updating deck")
	}
	return row.toDeck(), nil
}

func (repo *contentRepository) DeleteDecksByID(ids ...string) error {
	_, err := repo.db.Exec(`DELETE FROM decks WHERE id = ANY($1)`, pq.StringArray(ids))
	return errors.Wrap(err, "deleting decks")
}
