package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/mazoezi/core"
	"github.com/trezcool/mazoezi/core/badge"
	"github.com/trezcool/mazoezi/core/content"
	"github.com/trezcool/mazoezi/core/progress"
	"github.com/trezcool/mazoezi/core/user"
)

// NewConfig returns an app config suitable for tests.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	return conf
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateModule(
	t *testing.T,
	repo content.Repository,
	title, category string,
	isPublished bool,
	sessionDate ...time.Time,
) content.Module {
	t.Helper()

	now := time.Now().UTC()
	mod := content.Module{
		ID:              uuid.NewString(),
		Title:           title,
		Category:        category,
		DurationMinutes: 5,
		IsPublished:     isPublished,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if len(sessionDate) > 0 {
		sd := sessionDate[0].UTC()
		mod.SessionDate = &sd
	}
	mod, err := repo.CreateModule(mod)
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return mod
}

func CreateDeck(t *testing.T, repo content.Repository, moduleID, title string, order int) content.Deck {
	t.Helper()

	now := time.Now().UTC()
	deck := content.Deck{
		ID:        uuid.NewString(),
		ModuleID:  moduleID,
		Title:     title,
		Icon:      "lightbulb",
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	deck, err := repo.CreateDeck(deck)
	if err != nil {
		t.Fatalf("CreateDeck() failed: %v", err)
	}
	return deck
}

func CreateBadge(t *testing.T, repo badge.Repository, name string, rt badge.RequirementType, value int) badge.Badge {
	t.Helper()

	now := time.Now().UTC()
	bdg := badge.Badge{
		ID:               uuid.NewString(),
		Name:             name,
		RequirementType:  rt,
		RequirementValue: value,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	bdg, err := repo.CreateBadge(bdg)
	if err != nil {
		t.Fatalf("CreateBadge() failed: %v", err)
	}
	return bdg
}

// SeedProgress installs a progress record directly, bypassing the service.
func SeedProgress(t *testing.T, repo progress.Repository, p progress.UserProgress) progress.UserProgress {
	t.Helper()

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	saved, err := repo.UpsertProgress(context.Background(), p)
	if err != nil {
		t.Fatalf("SeedProgress() failed: %v", err)
	}
	return saved
}
