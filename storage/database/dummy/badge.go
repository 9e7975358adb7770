package dummydb

import (
	"sort"

	"github.com/trezcool/mazoezi/core/badge"
)

type badgeRepository struct {
	db *badgeTable
}

var _ badge.Repository = (*badgeRepository)(nil) // interface compliance check

func NewBadgeRepository(db *DB) badge.Repository {
	return &badgeRepository{db: db.badge}
}

func (repo *badgeRepository) CreateBadge(bdg badge.Badge) (badge.Badge, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[bdg.ID] = &bdg
	repo.db.order[bdg.ID] = repo.db.seq
	repo.db.seq++
	return bdg, nil
}

// QueryAllBadges returns the catalog in creation order.
func (repo *badgeRepository) QueryAllBadges() ([]badge.Badge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	badges := make([]badge.Badge, 0, len(repo.db.table))
	for _, b := range repo.db.table {
		badges = append(badges, *b)
	}
	sort.Slice(badges, func(i, j int) bool {
		return repo.db.order[badges[i].ID] < repo.db.order[badges[j].ID]
	})
	return badges, nil
}

func (repo *badgeRepository) GetBadgeByID(id string) (badge.Badge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if bdg, ok := repo.db.table[id]; ok {
		return *bdg, nil
	}
	return badge.Badge{}, badge.ErrNotFound
}

func (repo *badgeRepository) UpdateBadge(bdg badge.Badge) (badge.Badge, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origBdg, ok := repo.db.table[bdg.ID]
	if !ok {
		return badge.Badge{}, badge.ErrNotFound
	}
	origBdg.Name = bdg.Name
	origBdg.Description = bdg.Description
	origBdg.Icon = bdg.Icon
	origBdg.RequirementType = bdg.RequirementType
	origBdg.RequirementValue = bdg.RequirementValue
	origBdg.UpdatedAt = bdg.UpdatedAt

	return *origBdg, nil
}

func (repo *badgeRepository) DeleteBadgesByID(ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
		delete(repo.db.order, id)
	}
	return nil
}
