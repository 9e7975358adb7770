package content

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mazoezi/core"
)

// Categories a Module can be filed under.
const (
	CategoryWelcome  = "welcome"
	CategoryMenu     = "menu"
	CategoryPolicies = "policies"
	CategorySkills   = "skills"
	CategorySafety   = "safety"
)

var Categories = []string{CategoryWelcome, CategoryMenu, CategoryPolicies, CategorySkills, CategorySafety}

type (
	// Module is a unit of training content composed of ordered decks.
	Module struct {
		ID              string     `json:"id"`
		Title           string     `json:"title"`
		Description     string     `json:"description"`
		Category        string     `json:"category"`
		CoverImage      string     `json:"cover_image"`
		DurationMinutes int        `json:"duration_minutes"`
		SessionDate     *time.Time `json:"session_date"` // UTC; nil when not scheduled
		IsPublished     bool       `json:"is_published"`
		CreatedAt       time.Time  `json:"created_at"` // UTC
		UpdatedAt       time.Time  `json:"updated_at"` // UTC
	}

	// Deck is a single content card within a Module.
	Deck struct {
		ID        string    `json:"id"`
		ModuleID  string    `json:"module_id"`
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		Icon      string    `json:"icon"`
		Order     int       `json:"order"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}
)

// NewModule contains information needed to create a new Module.
type NewModule struct {
	Title           string     `json:"title" validate:"required"`
	Description     string     `json:"description"`
	Category        string     `json:"category" validate:"required,oneof=welcome menu policies skills safety"`
	CoverImage      string     `json:"cover_image" validate:"omitempty,url"`
	DurationMinutes int        `json:"duration_minutes" validate:"omitempty,min=1"`
	SessionDate     *time.Time `json:"session_date"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	if nm.DurationMinutes == 0 {
		nm.DurationMinutes = 5
	}
	return validate.Struct(nm)
}

// UpdateModule defines what information may be provided to modify an existing Module.
type UpdateModule struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category" validate:"omitempty,oneof=welcome menu policies skills safety"`
	CoverImage      string     `json:"cover_image" validate:"omitempty,url"`
	DurationMinutes int        `json:"duration_minutes" validate:"omitempty,min=1"`
	SessionDate     *time.Time `json:"session_date"`
}

func (um *UpdateModule) Validate(validate *validator.Validate, orig Module) error {
	title := core.CleanString(um.Title)
	if title != "" {
		um.Title = title
	} else {
		um.Title = orig.Title
	}
	if um.Description == "" {
		um.Description = orig.Description
	}
	if um.Category == "" {
		um.Category = orig.Category
	}
	if um.CoverImage == "" {
		um.CoverImage = orig.CoverImage
	}
	if um.DurationMinutes == 0 {
		um.DurationMinutes = orig.DurationMinutes
	}
	if um.SessionDate == nil {
		um.SessionDate = orig.SessionDate
	}
	return validate.Struct(um)
}

// NewDeck contains information needed to create a new Deck.
type NewDeck struct {
	ModuleID string `json:"module_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content"`
	Icon     string `json:"icon"`
	Order    *int   `json:"order" validate:"omitempty,min=0"`
}

func (nd *NewDeck) Validate(validate *validator.Validate) error {
	nd.Title = core.CleanString(nd.Title)
	if nd.Icon == "" {
		nd.Icon = "lightbulb"
	}
	return validate.Struct(nd)
}

// UpdateDeck defines what information may be provided to modify an existing Deck.
type UpdateDeck struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Icon    string `json:"icon"`
	Order   *int   `json:"order" validate:"omitempty,min=0"`
}

func (ud *UpdateDeck) Validate(validate *validator.Validate, orig Deck) error {
	title := core.CleanString(ud.Title)
	if title != "" {
		ud.Title = title
	} else {
		ud.Title = orig.Title
	}
	if ud.Content == "" {
		ud.Content = orig.Content
	}
	if ud.Icon == "" {
		ud.Icon = orig.Icon
	}
	if ud.Order == nil {
		order := orig.Order
		ud.Order = &order
	}
	return validate.Struct(ud)
}

type ModuleFilter struct {
	Search        string `query:"search"`
	Category      string `query:"category"`
	PublishedOnly bool   `query:"-"`
}

func (mf *ModuleFilter) Clean() {
	mf.Search = core.CleanString(mf.Search)
	mf.Category = core.CleanString(mf.Category, true /* lower */)
}
