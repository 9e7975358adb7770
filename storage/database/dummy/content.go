package dummydb

import (
	"sort"
	"strings"

	"github.com/trezcool/mazoezi/core/content"
)

type contentRepository struct {
	modules *moduleTable
	decks   *deckTable
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) content.Repository {
	return &contentRepository{modules: db.module, decks: db.deck}
}

func (repo *contentRepository) queryModules() []content.Module {
	mods := make([]content.Module, 0, len(repo.modules.table))
	for _, m := range repo.modules.table {
		mods = append(mods, *m)
	}
	// newest session first, then creation order for ties
	sort.SliceStable(mods, func(i, j int) bool {
		mi, mj := mods[i].SessionDate, mods[j].SessionDate
		switch {
		case mi != nil && mj != nil:
			return mi.After(*mj)
		case mi != nil:
			return true
		case mj != nil:
			return false
		}
		return mods[i].CreatedAt.Before(mods[j].CreatedAt)
	})
	return mods
}

func (repo *contentRepository) CreateModule(mod content.Module) (content.Module, error) {
	repo.modules.Lock()
	defer repo.modules.Unlock()

	repo.modules.table[mod.ID] = &mod
	return mod, nil
}

func (repo *contentRepository) GetModuleByID(id string) (content.Module, error) {
	repo.modules.RLock()
	defer repo.modules.RUnlock()

	if mod, ok := repo.modules.table[id]; ok {
		return *mod, nil
	}
	return content.Module{}, content.ErrModuleNotFound
}

func (repo *contentRepository) FilterModules(filter content.ModuleFilter) ([]content.Module, error) {
	repo.modules.RLock()
	defer repo.modules.RUnlock()

	mods := repo.queryModules()

	if filter.PublishedOnly {
		var filtered []content.Module
		for _, m := range mods {
			if m.IsPublished {
				filtered = append(filtered, m)
			}
		}
		mods = filtered
	}
	if mods != nil && filter.Category != "" {
		var filtered []content.Module
		for _, m := range mods {
			if m.Category == filter.Category {
				filtered = append(filtered, m)
			}
		}
		mods = filtered
	}
	if mods != nil && filter.Search != "" {
		var filtered []content.Module
		search := strings.ToLower(filter.Search)
		for _, m := range mods {
			if strings.Contains(strings.ToLower(m.Title), search) ||
				strings.Contains(strings.ToLower(m.Description), search) {
				filtered = append(filtered, m)
			}
		}
		mods = filtered
	}

	return mods, nil
}

func (repo *contentRepository) UpdateModule(mod content.Module, isPublished *bool) (content.Module, error) {
	repo.modules.Lock()
	defer repo.modules.Unlock()

	origMod, ok := repo.modules.table[mod.ID]
	if !ok {
		return content.Module{}, content.ErrModuleNotFound
	}
	origMod.Title = mod.Title
	origMod.Description = mod.Description
	origMod.Category = mod.Category
	origMod.CoverImage = mod.CoverImage
	origMod.DurationMinutes = mod.DurationMinutes
	origMod.SessionDate = mod.SessionDate
	if isPublished != nil {
		origMod.IsPublished = *isPublished
	}
	origMod.UpdatedAt = mod.UpdatedAt

	return *origMod, nil
}

func (repo *contentRepository) DeleteModulesByID(ids ...string) error {
	repo.modules.Lock()
	repo.decks.Lock()
	defer repo.modules.Unlock()
	defer repo.decks.Unlock()

	for _, id := range ids {
		delete(repo.modules.table, id)
		for deckID, deck := range repo.decks.table {
			if deck.ModuleID == id {
				delete(repo.decks.table, deckID)
			}
		}
	}
	return nil
}

func (repo *contentRepository) CreateDeck(deck content.Deck) (content.Deck, error) {
	repo.decks.Lock()
	defer repo.decks.Unlock()

	repo.decks.table[deck.ID] = &deck
	return deck, nil
}

func (repo *contentRepository) GetDeckByID(id string) (content.Deck, error) {
	repo.decks.RLock()
	defer repo.decks.RUnlock()

	if deck, ok := repo.decks.table[id]; ok {
		return *deck, nil
	}
	return content.Deck{}, content.ErrDeckNotFound
}

func (repo *contentRepository) QueryDecksByModule(moduleID string) ([]content.Deck, error) {
	repo.decks.RLock()
	defer repo.decks.RUnlock()

	var decks []content.Deck
	for _, deck := range repo.decks.table {
		if deck.ModuleID == moduleID {
			decks = append(decks, *deck)
		}
	}
	sort.SliceStable(decks, func(i, j int) bool { return decks[i].Order < decks[j].Order })
	return decks, nil
}

func (repo *contentRepository) CountDecksByModule(moduleID string) (int, error) {
	repo.decks.RLock()
	defer repo.decks.RUnlock()

	var n int
	for _, deck := range repo.decks.table {
		if deck.ModuleID == moduleID {
			n++
		}
	}
	return n, nil
}

func (repo *contentRepository) UpdateDeck(deck content.Deck) (content.Deck, error) {
	repo.decks.Lock()
	defer repo.decks.Unlock()

	origDeck, ok := repo.decks.table[deck.ID]
	if !ok {
		return content.Deck{}, content.ErrDeckNotFound
	}
	origDeck.Title = deck.Title
	origDeck.Content = deck.Content
	origDeck.Icon = deck.Icon
	origDeck.Order = deck.Order
	origDeck.UpdatedAt = deck.UpdatedAt

	return *origDeck, nil
}

func (repo *contentRepository) DeleteDecksByID(ids ...string) error {
	repo.decks.Lock()
	defer repo.decks.Unlock()
	for _, id := range ids {
		delete(repo.decks.table, id)
	}
	return nil
}
