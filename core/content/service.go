package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrDeckNotFound   = errors.New("deck not found")
)

type (
	Repository interface {
		CreateModule(m Module) (Module, error)
		GetModuleByID(id string) (Module, error)
		// FilterModules applies AND operation on available ModuleFilter fields;
		// results are ordered by session_date descending, nulls last.
		FilterModules(filter ModuleFilter) ([]Module, error)
		UpdateModule(m Module, isPublished *bool) (Module, error)
		DeleteModulesByID(ids ...string) error

		CreateDeck(d Deck) (Deck, error)
		GetDeckByID(id string) (Deck, error)
		// QueryDecksByModule returns a module's decks ordered by Deck.Order ascending.
		QueryDecksByModule(moduleID string) ([]Deck, error)
		CountDecksByModule(moduleID string) (int, error)
		UpdateDeck(d Deck) (Deck, error)
		DeleteDecksByID(ids ...string) error
	}

	Service interface {
		CreateModule(nm NewModule) (Module, error)
		GetModule(id string) (Module, error)
		Filter(filter ModuleFilter) ([]Module, error)
		UpdateModule(id string, um UpdateModule) (Module, error)
		TogglePublish(id string) (Module, error)
		DeleteModules(ids ...string) error

		CreateDeck(nd NewDeck) (Deck, error)
		GetDeck(id string) (Deck, error)
		ModuleDecks(moduleID string) ([]Deck, error)
		UpdateDeck(id string, ud UpdateDeck) (Deck, error)
		DeleteDecks(ids ...string) error

		// ModuleProgressPercent reports how far a user is through a module:
		// 100 once completed, otherwise the ratio of its decks they have viewed.
		ModuleProgressPercent(moduleID string, completed bool, decksViewed []string) (int, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateModule(nm NewModule) (Module, error) {
	now := time.Now().UTC()
	m := Module{
		ID:              uuid.NewString(),
		Title:           nm.Title,
		Description:     nm.Description,
		Category:        nm.Category,
		CoverImage:      nm.CoverImage,
		DurationMinutes: nm.DurationMinutes,
		SessionDate:     nm.SessionDate,
		IsPublished:     false, // drafts until explicitly published
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateModule(m)
}

func (svc *service) GetModule(id string) (Module, error) {
	return svc.repo.GetModuleByID(id)
}

func (svc *service) Filter(filter ModuleFilter) ([]Module, error) {
	filter.Clean()
	return svc.repo.FilterModules(filter)
}

func (svc *service) UpdateModule(id string, um UpdateModule) (Module, error) {
	m := Module{
		ID:              id,
		Title:           um.Title,
		Description:     um.Description,
		Category:        um.Category,
		CoverImage:      um.CoverImage,
		DurationMinutes: um.DurationMinutes,
		SessionDate:     um.SessionDate,
		UpdatedAt:       time.Now().UTC(),
	}
	return svc.repo.UpdateModule(m, nil)
}

func (svc *service) TogglePublish(id string) (Module, error) {
	m, err := svc.repo.GetModuleByID(id)
	if err != nil {
		return Module{}, err
	}
	published := !m.IsPublished
	m.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateModule(m, &published)
}

func (svc *service) DeleteModules(ids ...string) error {
	return svc.repo.DeleteModulesByID(ids...)
}

func (svc *service) CreateDeck(nd NewDeck) (Deck, error) {
	if _, err := svc.repo.GetModuleByID(nd.ModuleID); err != nil {
		return Deck{}, err
	}

	// default to appending at the end of the module
	var order int
	if nd.Order != nil {
		order = *nd.Order
	} else {
		count, err := svc.repo.CountDecksByModule(nd.ModuleID)
		if err != nil {
			return Deck{}, err
		}
		order = count
	}

	now := time.Now().UTC()
	d := Deck{
		ID:        uuid.NewString(),
		ModuleID:  nd.ModuleID,
		Title:     nd.Title,
		Content:   nd.Content,
		Icon:      nd.Icon,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateDeck(d)
}

func (svc *service) GetDeck(id string) (Deck, error) {
	return svc.repo.GetDeckByID(id)
}

func (svc *service) ModuleDecks(moduleID string) ([]Deck, error) {
	return svc.repo.QueryDecksByModule(moduleID)
}

func (svc *service) UpdateDeck(id string, ud UpdateDeck) (Deck, error) {
	d := Deck{
		ID:        id,
		Title:     ud.Title,
		Content:   ud.Content,
		Icon:      ud.Icon,
		Order:     *ud.Order,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateDeck(d)
}

func (svc *service) DeleteDecks(ids ...string) error {
	return svc.repo.DeleteDecksByID(ids...)
}

func (svc *service) ModuleProgressPercent(moduleID string, completed bool, decksViewed []string) (int, error) {
	if completed {
		return 100, nil
	}
	decks, err := svc.repo.QueryDecksByModule(moduleID)
	if err != nil {
		return 0, err
	}
	if len(decks) == 0 {
		return 0, nil
	}

	viewed := make(map[string]struct{}, len(decksViewed))
	for _, id := range decksViewed {
		viewed[id] = struct{}{}
	}
	var count int
	for _, d := range decks {
		if _, ok := viewed[d.ID]; ok {
			count++
		}
	}
	return count * 100 / len(decks), nil
}
