package badge

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("badge not found")

type (
	Repository interface {
		CreateBadge(b Badge) (Badge, error)
		// QueryAllBadges returns the catalog in creation order.
		QueryAllBadges() ([]Badge, error)
		GetBadgeByID(id string) (Badge, error)
		UpdateBadge(b Badge) (Badge, error)
		DeleteBadgesByID(ids ...string) error
	}

	Service interface {
		Create(nb NewBadge) (Badge, error)
		QueryAll() ([]Badge, error)
		GetByID(id string) (Badge, error)
		Update(id string, ub UpdateBadge) (Badge, error)
		Delete(ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(nb NewBadge) (Badge, error) {
	now := time.Now().UTC()
	b := Badge{
		ID:               uuid.NewString(),
		Name:             nb.Name,
		Description:      nb.Description,
		Icon:             nb.Icon,
		RequirementType:  nb.RequirementType,
		RequirementValue: nb.RequirementValue,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateBadge(b)
}

func (svc *service) QueryAll() ([]Badge, error) {
	return svc.repo.QueryAllBadges()
}

func (svc *service) GetByID(id string) (Badge, error) {
	return svc.repo.GetBadgeByID(id)
}

func (svc *service) Update(id string, ub UpdateBadge) (Badge, error) {
	b := Badge{
		ID:               id,
		Name:             ub.Name,
		Description:      ub.Description,
		Icon:             ub.Icon,
		RequirementType:  ub.RequirementType,
		RequirementValue: ub.RequirementValue,
		UpdatedAt:        time.Now().UTC(),
	}
	return svc.repo.UpdateBadge(b)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteBadgesByID(ids...)
}
