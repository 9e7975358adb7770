package progress

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mazoezi/core"
	"github.com/trezcool/mazoezi/core/badge"
	"github.com/trezcool/mazoezi/core/user"
)

// maxUpsertAttempts bounds the optimistic-concurrency retry loop; every
// attempt re-derives the merge from freshly read state.
const maxUpsertAttempts = 3

type (
	Repository interface {
		GetProgress(ctx context.Context, userID string) (UserProgress, error)
		// UpsertProgress persists p as one atomic write. p.Version must match
		// the stored version (0 inserts a new record); ErrConflict otherwise.
		// The returned record carries the incremented version.
		UpsertProgress(ctx context.Context, p UserProgress) (UserProgress, error)
		// QueryProgress returns records ordered per ord; limit <= 0 means all.
		QueryProgress(ctx context.Context, ord core.DBOrdering, limit int) ([]UserProgress, error)
	}

	// LeaderboardCache caches the points leaderboard between reads.
	LeaderboardCache interface {
		GetLeaderboard(ctx context.Context) ([]UserProgress, bool)
		SetLeaderboard(ctx context.Context, entries []UserProgress)
	}

	Service interface {
		// RecordCompletion merges a module-completion event into the user's
		// aggregate: set-union of the module id, streak update, completion
		// points and newly earned badges, persisted as a single write.
		RecordCompletion(ctx context.Context, e CompletionEvent) (Result, error)
		// RecordAppOpen feeds the streak without completing anything.
		RecordAppOpen(ctx context.Context, e OpenEvent) (Result, error)
		// RecordDeckView unions a viewed deck id into the aggregate (display
		// metric only; no streak or points).
		RecordDeckView(ctx context.Context, userID, deckID string, today core.Date) (UserProgress, error)
		// IncrementVoiceNotes bumps the externally maintained voice-note
		// counter read by the badge evaluator.
		IncrementVoiceNotes(ctx context.Context, userID string, delta int) (UserProgress, error)
		Get(ctx context.Context, userID string) (UserProgress, error)
		Leaderboard(ctx context.Context) ([]UserProgress, error)
		// QueryAll returns all aggregates by most recent activity (admin view).
		QueryAll(ctx context.Context) ([]UserProgress, error)
	}

	service struct {
		repo     Repository
		badgeSvc badge.Service
		usrSvc   user.Service
		mailSvc  core.EmailService
		cache    LeaderboardCache // may be nil
		logger   core.Logger
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	badgeSvc badge.Service,
	usrSvc user.Service,
	mailSvc core.EmailService,
	cache LeaderboardCache,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		repo:     repo,
		badgeSvc: badgeSvc,
		usrSvc:   usrSvc,
		mailSvc:  mailSvc,
		cache:    cache,
		logger:   logger,
		conf:     conf,
	}
}

func (svc *service) RecordCompletion(ctx context.Context, e CompletionEvent) (Result, error) {
	if err := e.Validate(); err != nil {
		return Result{}, err
	}

	catalog, err := svc.badgeSvc.QueryAll()
	if err != nil {
		return Result{}, errors.Wrap(err, "loading badge catalog")
	}

	var res Result
	err = svc.retryOnConflict(ctx, e.UserID, func(p *UserProgress) (UserProgress, error) {
		merged := initOrCopy(p, e.UserID)
		merged.ModulesCompleted = union(merged.ModulesCompleted, e.ModuleID)

		streak := UpdateStreak(p, e.Today)
		merged.CurrentStreak = streak.CurrentStreak
		merged.LongestStreak = streak.LongestStreak
		merged.LastActivityDate = streak.LastActivityDate

		// Points are awarded on every completion call, including repeat
		// completions of the same module. Reviewing content re-earns points;
		// this matches the shipped behavior and must not be "fixed" here.
		merged.TotalPoints += svc.conf.CompletionPoints

		res.NewBadges = EvaluateBadges(merged, catalog)
		for _, id := range res.NewBadges {
			merged.Badges = union(merged.Badges, id)
		}
		return merged, nil
	}, &res.Progress)
	if err != nil {
		return Result{}, err
	}

	if len(res.NewBadges) > 0 {
		svc.sendBadgeEarnedMail(res.Progress.UserID, res.NewBadges, catalog)
	}
	return res, nil
}

func (svc *service) RecordAppOpen(ctx context.Context, e OpenEvent) (Result, error) {
	if err := e.Validate(); err != nil {
		return Result{}, err
	}

	catalog, err := svc.badgeSvc.QueryAll()
	if err != nil {
		return Result{}, errors.Wrap(err, "loading badge catalog")
	}

	// same-day open: nothing to merge, skip the write
	if cur, err := svc.repo.GetProgress(ctx, e.UserID); err == nil && cur.LastActivityDate.Equal(e.Today) {
		return Result{Progress: cur}, nil
	} else if err != nil && errors.Cause(err) != ErrNotFound {
		return Result{}, err
	}

	var res Result
	err = svc.retryOnConflict(ctx, e.UserID, func(p *UserProgress) (UserProgress, error) {
		merged := initOrCopy(p, e.UserID)

		streak := UpdateStreak(p, e.Today)
		merged.CurrentStreak = streak.CurrentStreak
		merged.LongestStreak = streak.LongestStreak
		merged.LastActivityDate = streak.LastActivityDate

		res.NewBadges = EvaluateBadges(merged, catalog)
		for _, id := range res.NewBadges {
			merged.Badges = union(merged.Badges, id)
		}
		return merged, nil
	}, &res.Progress)
	if err != nil {
		return Result{}, err
	}

	if len(res.NewBadges) > 0 {
		svc.sendBadgeEarnedMail(res.Progress.UserID, res.NewBadges, catalog)
	}
	return res, nil
}

func (svc *service) RecordDeckView(ctx context.Context, userID, deckID string, today core.Date) (UserProgress, error) {
	if userID == "" || deckID == "" || today.IsZero() {
		return UserProgress{}, core.NewValidationError(ErrInvalidEvent)
	}

	var saved UserProgress
	err := svc.retryOnConflict(ctx, userID, func(p *UserProgress) (UserProgress, error) {
		merged := initOrCopy(p, userID)
		merged.DecksViewed = union(merged.DecksViewed, deckID)
		return merged, nil
	}, &saved)
	return saved, err
}

func (svc *service) IncrementVoiceNotes(ctx context.Context, userID string, delta int) (UserProgress, error) {
	if userID == "" {
		return UserProgress{}, core.NewValidationError(ErrInvalidEvent)
	}

	var saved UserProgress
	err := svc.retryOnConflict(ctx, userID, func(p *UserProgress) (UserProgress, error) {
		merged := initOrCopy(p, userID)
		merged.VoiceNotesCount += delta
		if merged.VoiceNotesCount < 0 {
			merged.VoiceNotesCount = 0
		}
		return merged, nil
	}, &saved)
	return saved, err
}

func (svc *service) Get(ctx context.Context, userID string) (UserProgress, error) {
	return svc.repo.GetProgress(ctx, userID)
}

func (svc *service) Leaderboard(ctx context.Context) ([]UserProgress, error) {
	if svc.cache != nil {
		if entries, ok := svc.cache.GetLeaderboard(ctx); ok {
			return entries, nil
		}
	}

	entries, err := svc.repo.QueryProgress(ctx, core.DBOrdering{Field: "total_points"}, svc.conf.LeaderboardSize)
	if err != nil {
		return nil, err
	}
	if svc.cache != nil {
		svc.cache.SetLeaderboard(ctx, entries)
	}
	return entries, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]UserProgress, error) {
	return svc.repo.QueryProgress(ctx, core.DBOrdering{Field: "last_activity_date"}, 0)
}

// retryOnConflict runs the read-merge-write cycle, re-deriving the merge from
// freshly read state whenever the version precondition fails.
func (svc *service) retryOnConflict(
	ctx context.Context,
	userID string,
	merge func(p *UserProgress) (UserProgress, error),
	out *UserProgress,
) error {
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		var p *UserProgress
		cur, err := svc.repo.GetProgress(ctx, userID)
		switch {
		case err == nil:
			p = &cur
		case errors.Cause(err) == ErrNotFound:
			p = nil
		default:
			return err
		}

		merged, err := merge(p)
		if err != nil {
			return err
		}
		merged.UpdatedAt = time.Now().UTC()

		saved, err := svc.repo.UpsertProgress(ctx, merged)
		if err != nil {
			if errors.Cause(err) == ErrConflict {
				continue
			}
			return err
		}
		*out = saved
		return nil
	}
	return errors.Wrapf(ErrConflict, "upserting progress for user %s", userID)
}

// initOrCopy returns a copy of p, or a fresh aggregate when none exists yet.
func initOrCopy(p *UserProgress, userID string) UserProgress {
	if p == nil {
		return UserProgress{UserID: userID, CreatedAt: time.Now().UTC()}
	}
	return *p
}

// sendBadgeEarnedMail congratulates the user on their new badges. Best effort:
// a mail failure never fails the recording.
func (svc *service) sendBadgeEarnedMail(userID string, badgeIDs []string, catalog []badge.Badge) {
	usr, err := svc.usrSvc.GetByID(userID)
	if err != nil || usr.Email == "" {
		if err != nil {
			svc.logger.Warn("looking up user for badge mail", err)
		}
		return
	}

	byID := make(map[string]badge.Badge, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
	}
	earned := make([]badge.Badge, 0, len(badgeIDs))
	for _, id := range badgeIDs {
		if b, ok := byID[id]; ok {
			earned = append(earned, b)
		}
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "You earned a new badge!",
		TemplateName: "badge_earned",
		TemplateData: struct {
			Name   string
			Badges []badge.Badge
		}{usr.Name, earned},
	})
}
