package progress_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mazoezi/core"
	"github.com/trezcool/mazoezi/core/badge"
	"github.com/trezcool/mazoezi/core/progress"
	"github.com/trezcool/mazoezi/core/user"
	emailsvc "github.com/trezcool/mazoezi/services/email"
	dummydb "github.com/trezcool/mazoezi/storage/database/dummy"
	testutil "github.com/trezcool/mazoezi/tests"
)

type testLogger struct {
	t *testing.T
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Log("DEBUG", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Log("INFO", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Log("WARN", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Log("ERROR", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatal(msg, args) }

type fixture struct {
	conf      *core.Config
	svc       progress.Service
	repo      progress.Repository
	usrRepo   user.Repository
	badgeRepo badge.Repository
}

func setup(t *testing.T, repoOverride ...func(progress.Repository) progress.Repository) fixture {
	t.Helper()

	conf := testutil.NewConfig()
	core.ParseEmailTemplates(conf, testLogger{t})

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	var repo progress.Repository = dummydb.NewProgressRepository(db)
	for _, override := range repoOverride {
		repo = override(repo)
	}
	usrRepo := dummydb.NewUserRepository(db)
	badgeRepo := dummydb.NewBadgeRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(usrRepo, mailSvc)
	badgeSvc := badge.NewService(badgeRepo)

	svc := progress.NewService(repo, badgeSvc, usrSvc, mailSvc, nil, testLogger{t}, conf)
	return fixture{conf: conf, svc: svc, repo: repo, usrRepo: usrRepo, badgeRepo: badgeRepo}
}

func Test_service_RecordCompletion(t *testing.T) {
	ctx := context.Background()
	today := core.NewDate(2026, time.March, 10)

	t.Run("first completion initializes the aggregate", func(t *testing.T) {
		fix := setup(t)

		res, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}

		assert.Equal(t, []string{"m1"}, res.Progress.ModulesCompleted)
		assert.Equal(t, 1, res.Progress.CurrentStreak)
		assert.Equal(t, 1, res.Progress.LongestStreak)
		assert.True(t, res.Progress.LastActivityDate.Equal(today))
		assert.Equal(t, fix.conf.CompletionPoints, res.Progress.TotalPoints)
		assert.Empty(t, res.NewBadges)
	})

	t.Run("repeat completion keeps the module set but re-awards points", func(t *testing.T) {
		fix := setup(t)

		_, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		res, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}

		assert.Equal(t, []string{"m1"}, res.Progress.ModulesCompleted)
		assert.Equal(t, 2*fix.conf.CompletionPoints, res.Progress.TotalPoints)
		assert.Equal(t, 1, res.Progress.CurrentStreak)
	})

	t.Run("next day completion extends the streak", func(t *testing.T) {
		fix := setup(t)

		_, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		res, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m2", Today: today.AddDays(1)})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}

		assert.Equal(t, []string{"m1", "m2"}, res.Progress.ModulesCompleted)
		assert.Equal(t, 2, res.Progress.CurrentStreak)
		assert.Equal(t, 2, res.Progress.LongestStreak)
	})

	t.Run("gap resets the streak but keeps the record", func(t *testing.T) {
		fix := setup(t)

		_, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		_, err = fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m2", Today: today.AddDays(1)})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		res, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m3", Today: today.AddDays(5)})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}

		assert.Equal(t, 1, res.Progress.CurrentStreak)
		assert.Equal(t, 2, res.Progress.LongestStreak)
	})

	t.Run("badges are awarded once and persisted", func(t *testing.T) {
		fix := setup(t)
		first := testutil.CreateBadge(t, fix.badgeRepo, "First Steps", badge.RequirementModules, 1)

		res, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		assert.Equal(t, []string{first.ID}, res.NewBadges)
		assert.Equal(t, []string{first.ID}, res.Progress.Badges)

		res, err = fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		assert.Empty(t, res.NewBadges)
		assert.Equal(t, []string{first.ID}, res.Progress.Badges)
	})

	t.Run("badge thresholds see the post merge state", func(t *testing.T) {
		fix := setup(t)
		collector := testutil.CreateBadge(t, fix.badgeRepo, "Collector", badge.RequirementPoints, 2*fix.conf.CompletionPoints)

		res, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		assert.Empty(t, res.NewBadges)

		res, err = fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m2", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		assert.Equal(t, []string{collector.ID}, res.NewBadges)
	})

	t.Run("badge earned email goes out", func(t *testing.T) {
		fix := setup(t)
		testutil.CreateBadge(t, fix.badgeRepo, "First Steps", badge.RequirementModules, 1)
		usr := testutil.CreateUser(t, fix.usrRepo, "Awa", "awa", "awa@test.cd", "s3cr3t", user.StaffRoles, true)

		sentBefore := len(emailsvc.SentMessages)
		_, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: usr.ID, ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		assert.Len(t, emailsvc.SentMessages, sentBefore+1)
	})

	t.Run("invalid event is rejected before any write", func(t *testing.T) {
		fix := setup(t)

		_, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", Today: today})
		if verr, ok := errors.Cause(err).(*core.ValidationError); ok {
			assert.Equal(t, progress.ErrInvalidEvent, verr.Err)
		} else {
			t.Fatalf("RecordCompletion() error = %v, want ValidationError", err)
		}

		_, err = fix.svc.Get(ctx, "u1")
		assert.Equal(t, progress.ErrNotFound, errors.Cause(err))
	})

	t.Run("concurrent completions of different modules both land", func(t *testing.T) {
		fix := setup(t)

		var wg sync.WaitGroup
		for _, moduleID := range []string{"m1", "m2"} {
			moduleID := moduleID
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: moduleID, Today: today})
				if err != nil {
					t.Errorf("RecordCompletion(%s) failed: %v", moduleID, err)
				}
			}()
		}
		wg.Wait()

		p, err := fix.svc.Get(ctx, "u1")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		assert.ElementsMatch(t, []string{"m1", "m2"}, p.ModulesCompleted)
		assert.Equal(t, 2*fix.conf.CompletionPoints, p.TotalPoints)
	})
}

// conflictingRepo fails the first n upserts with ErrConflict, then delegates.
type conflictingRepo struct {
	progress.Repository
	mu        sync.Mutex
	conflicts int
}

func (r *conflictingRepo) UpsertProgress(ctx context.Context, p progress.UserProgress) (progress.UserProgress, error) {
	r.mu.Lock()
	remaining := r.conflicts
	if remaining > 0 {
		r.conflicts--
	}
	r.mu.Unlock()

	if remaining > 0 {
		return progress.UserProgress{}, progress.ErrConflict
	}
	return r.Repository.UpsertProgress(ctx, p)
}

func Test_service_RecordCompletion_conflicts(t *testing.T) {
	ctx := context.Background()
	today := core.NewDate(2026, time.March, 10)

	t.Run("transient conflicts are retried", func(t *testing.T) {
		fix := setup(t, func(repo progress.Repository) progress.Repository {
			return &conflictingRepo{Repository: repo, conflicts: 2}
		})

		res, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		if err != nil {
			t.Fatalf("RecordCompletion() failed: %v", err)
		}
		assert.Equal(t, []string{"m1"}, res.Progress.ModulesCompleted)
	})

	t.Run("exhausted retries surface the conflict", func(t *testing.T) {
		fix := setup(t, func(repo progress.Repository) progress.Repository {
			return &conflictingRepo{Repository: repo, conflicts: 10}
		})

		_, err := fix.svc.RecordCompletion(ctx, progress.CompletionEvent{UserID: "u1", ModuleID: "m1", Today: today})
		assert.Equal(t, progress.ErrConflict, errors.Cause(err))
	})
}

// downRepo simulates an unreachable store.
type downRepo struct {
	progress.Repository
}

func (r downRepo) GetProgress(ctx context.Context, userID string) (progress.UserProgress, error) {
	return progress.UserProgress{}, errors.Wrap(progress.ErrStoreUnavailable, "getting progress")
}

func Test_service_RecordCompletion_storeDown(t *testing.T) {
	fix := setup(t, func(repo progress.Repository) progress.Repository {
		return downRepo{Repository: repo}
	})

	_, err := fix.svc.RecordCompletion(context.Background(), progress.CompletionEvent{
		UserID: "u1", ModuleID: "m1", Today: core.Today(),
	})
	assert.Equal(t, progress.ErrStoreUnavailable, errors.Cause(err))
}

func Test_service_RecordAppOpen(t *testing.T) {
	ctx := context.Background()
	today := core.NewDate(2026, time.March, 10)

	t.Run("first open starts a streak without points", func(t *testing.T) {
		fix := setup(t)

		res, err := fix.svc.RecordAppOpen(ctx, progress.OpenEvent{UserID: "u1", Today: today})
		if err != nil {
			t.Fatalf("RecordAppOpen() failed: %v", err)
		}
		assert.Equal(t, 1, res.Progress.CurrentStreak)
		assert.Zero(t, res.Progress.TotalPoints)
		assert.Empty(t, res.Progress.ModulesCompleted)
	})

	t.Run("same day open skips the write", func(t *testing.T) {
		fix := setup(t)

		first, err := fix.svc.RecordAppOpen(ctx, progress.OpenEvent{UserID: "u1", Today: today})
		if err != nil {
			t.Fatalf("RecordAppOpen() failed: %v", err)
		}
		second, err := fix.svc.RecordAppOpen(ctx, progress.OpenEvent{UserID: "u1", Today: today})
		if err != nil {
			t.Fatalf("RecordAppOpen() failed: %v", err)
		}
		assert.Equal(t, first.Progress.Version, second.Progress.Version)
		assert.Equal(t, 1, second.Progress.CurrentStreak)
	})

	t.Run("open the next day extends the streak", func(t *testing.T) {
		fix := setup(t)

		_, err := fix.svc.RecordAppOpen(ctx, progress.OpenEvent{UserID: "u1", Today: today})
		if err != nil {
			t.Fatalf("RecordAppOpen() failed: %v", err)
		}
		res, err := fix.svc.RecordAppOpen(ctx, progress.OpenEvent{UserID: "u1", Today: today.AddDays(1)})
		if err != nil {
			t.Fatalf("RecordAppOpen() failed: %v", err)
		}
		assert.Equal(t, 2, res.Progress.CurrentStreak)
	})

	t.Run("streak badge is granted on open", func(t *testing.T) {
		fix := setup(t)
		warrior := testutil.CreateBadge(t, fix.badgeRepo, "Week Warrior", badge.RequirementStreak, 3)

		var res progress.Result
		var err error
		for i := 0; i < 3; i++ {
			res, err = fix.svc.RecordAppOpen(ctx, progress.OpenEvent{UserID: "u1", Today: today.AddDays(i)})
			if err != nil {
				t.Fatalf("RecordAppOpen() failed: %v", err)
			}
		}
		assert.Equal(t, []string{warrior.ID}, res.NewBadges)
	})
}

func Test_service_RecordDeckView(t *testing.T) {
	ctx := context.Background()
	fix := setup(t)

	p, err := fix.svc.RecordDeckView(ctx, "u1", "d1", core.Today())
	if err != nil {
		t.Fatalf("RecordDeckView() failed: %v", err)
	}
	assert.Equal(t, []string{"d1"}, p.DecksViewed)
	assert.Zero(t, p.CurrentStreak) // viewing a deck is not streak activity
	assert.Zero(t, p.TotalPoints)

	// unions, never duplicates
	p, err = fix.svc.RecordDeckView(ctx, "u1", "d1", core.Today())
	if err != nil {
		t.Fatalf("RecordDeckView() failed: %v", err)
	}
	assert.Equal(t, []string{"d1"}, p.DecksViewed)
}

func Test_service_IncrementVoiceNotes(t *testing.T) {
	ctx := context.Background()
	fix := setup(t)

	p, err := fix.svc.IncrementVoiceNotes(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("IncrementVoiceNotes() failed: %v", err)
	}
	assert.Equal(t, 1, p.VoiceNotesCount)

	p, err = fix.svc.IncrementVoiceNotes(ctx, "u1", -5)
	if err != nil {
		t.Fatalf("IncrementVoiceNotes() failed: %v", err)
	}
	assert.Zero(t, p.VoiceNotesCount) // never negative
}

// fakeCache records leaderboard reads/writes.
type fakeCache struct {
	mu      sync.Mutex
	entries []progress.UserProgress
	hit     bool
	sets    int
}

func (c *fakeCache) GetLeaderboard(ctx context.Context) ([]progress.UserProgress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries, c.hit
}

func (c *fakeCache) SetLeaderboard(ctx context.Context, entries []progress.UserProgress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.hit = true
	c.sets++
}

func Test_service_Leaderboard(t *testing.T) {
	ctx := context.Background()
	today := core.NewDate(2026, time.March, 10)

	seed := func(t *testing.T, fix fixture) {
		testutil.SeedProgress(t, fix.repo, progress.UserProgress{UserID: "u1", TotalPoints: 30, LastActivityDate: today})
		testutil.SeedProgress(t, fix.repo, progress.UserProgress{UserID: "u2", TotalPoints: 50, LastActivityDate: today})
		testutil.SeedProgress(t, fix.repo, progress.UserProgress{UserID: "u3", TotalPoints: 10, LastActivityDate: today})
	}

	t.Run("orders by points and honors the size limit", func(t *testing.T) {
		fix := setup(t)
		fix.conf.LeaderboardSize = 2
		seed(t, fix)

		entries, err := fix.svc.Leaderboard(ctx)
		if err != nil {
			t.Fatalf("Leaderboard() failed: %v", err)
		}
		if assert.Len(t, entries, 2) {
			assert.Equal(t, "u2", entries[0].UserID)
			assert.Equal(t, "u1", entries[1].UserID)
		}
	})

	t.Run("cache is filled on miss and served on hit", func(t *testing.T) {
		conf := testutil.NewConfig()
		db, err := dummydb.Open()
		if err != nil {
			t.Fatalf("dummydb.Open() failed: %v", err)
		}
		repo := dummydb.NewProgressRepository(db)
		cache := &fakeCache{}
		mailSvc := emailsvc.NewConsoleServiceMock(conf)
		svc := progress.NewService(
			repo,
			badge.NewService(dummydb.NewBadgeRepository(db)),
			user.NewServiceMock(dummydb.NewUserRepository(db), mailSvc),
			mailSvc,
			cache,
			testLogger{t},
			conf,
		)
		testutil.SeedProgress(t, repo, progress.UserProgress{UserID: "u1", TotalPoints: 30, LastActivityDate: today})

		if _, err = svc.Leaderboard(ctx); err != nil {
			t.Fatalf("Leaderboard() failed: %v", err)
		}
		assert.Equal(t, 1, cache.sets)

		// second read is served from the cache
		if _, err = svc.Leaderboard(ctx); err != nil {
			t.Fatalf("Leaderboard() failed: %v", err)
		}
		assert.Equal(t, 1, cache.sets)
	})
}

func Test_service_QueryAll(t *testing.T) {
	ctx := context.Background()
	today := core.NewDate(2026, time.March, 10)
	fix := setup(t)

	testutil.SeedProgress(t, fix.repo, progress.UserProgress{UserID: "u1", LastActivityDate: today.AddDays(-3)})
	testutil.SeedProgress(t, fix.repo, progress.UserProgress{UserID: "u2", LastActivityDate: today})

	records, err := fix.svc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if assert.Len(t, records, 2) {
		assert.Equal(t, "u2", records[0].UserID) // most recent first
	}
}
