package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akinalp/workdesk/config"
	"github.com/akinalp/workdesk/database"
	"github.com/akinalp/workdesk/pkg/cache"
	"github.com/akinalp/workdesk/pkg/metrics"
	"github.com/akinalp/workdesk/pkg/tz"
	"github.com/akinalp/workdesk/repository"
	"github.com/akinalp/workdesk/workflow"
)

const (
	sweepLockKey        = "sweep"
	sweepTimeout        = 5 * time.Minute
	readNotificationTTL = 90 * 24 * time.Hour
)

// SweepResult reports what one sweep did.
type SweepResult struct {
	Reminders         int  `json:"reminders"`
	CheckoutReminders int  `json:"checkout_reminders"`
	Skipped           bool `json:"skipped"`
}

// Sweeper is the periodic notification job: approval reminders for
// requests that sat too long, end-of-day checkout reminders and
// housekeeping of expired rows.
type Sweeper interface {
	Start()
	// Stop halts the ticker and waits for a running sweep to finish.
	Stop()
	// RunOnce performs one sweep as of now. When another process holds the
	// sweep lock it does nothing and reports Skipped.
	RunOnce(ctx context.Context, now time.Time) (SweepResult, error)
}

// SweeperDeps groups the repositories the sweeper reads and stamps.
type SweeperDeps struct {
	Approvals     repository.ApprovalRepository
	Attendance    repository.AttendanceRepository
	Users         repository.UserRepository
	Sessions      repository.SessionRepository
	ResetTokens   repository.PasswordResetRepository
	Notifications repository.NotificationRepository
}

type sweeper struct {
	deps          SweeperDeps
	notifier      NotificationService
	store         cache.Store
	metrics       *metrics.Registry
	policy        *config.Policy
	loc           *time.Location
	interval      time.Duration
	reminderAfter time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSweeper(
	deps SweeperDeps,
	notifier NotificationService,
	store cache.Store,
	reg *metrics.Registry,
	policy *config.Policy,
	loc *time.Location,
	cfg config.SweepConfig,
) Sweeper {
	return &sweeper{
		deps:          deps,
		notifier:      notifier,
		store:         store,
		metrics:       reg,
		policy:        policy,
		loc:           loc,
		interval:      cfg.Interval,
		reminderAfter: cfg.ReminderAfter,
	}
}

func (s *sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	log.Info().Str("component", "sweeper").Dur("interval", s.interval).Dur("reminder_after", s.reminderAfter).Msg("starting")

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-stop:
				log.Info().Str("component", "sweeper").Msg("stopped")
				return
			}
		}
	}(s.stopCh, s.doneCh)
}

func (s *sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
}

func (s *sweeper) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.RunOnce(ctx, time.Now()); err != nil {
		log.Error().Str("component", "sweeper").Err(err).Msg("sweep failed")
	}
}

func (s *sweeper) RunOnce(ctx context.Context, now time.Time) (SweepResult, error) {
	var res SweepResult

	// Several replicas may share a Redis; only one sweeps per interval.
	lockTTL := s.interval / 2
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	ok, err := s.store.TryLock(ctx, sweepLockKey+":"+now.UTC().Truncate(lockTTL).Format(time.RFC3339), lockTTL)
	if err != nil {
		log.Warn().Str("component", "sweeper").Err(err).Msg("sweep lock unavailable, running anyway")
	} else if !ok {
		res.Skipped = true
		return res, nil
	}

	if res.Reminders, err = s.remindApprovers(ctx, now); err != nil {
		return res, err
	}
	if res.CheckoutReminders, err = s.remindCheckouts(ctx, now); err != nil {
		return res, err
	}
	s.housekeeping(ctx, now)

	s.metrics.Sweep()
	log.Info().Str("component", "sweeper").Int("reminders", res.Reminders).
		Int("checkout_reminders", res.CheckoutReminders).Msg("sweep finished")
	return res, nil
}

// remindApprovers nudges whoever a stale pending request is waiting on.
// A request is stale when neither its last transition nor its last
// reminder is newer than reminderAfter.
func (s *sweeper) remindApprovers(ctx context.Context, now time.Time) (int, error) {
	if s.reminderAfter <= 0 {
		return 0, nil
	}
	before := now.Add(-s.reminderAfter)
	names := make(map[string]string)
	sent := 0

	for _, kind := range workflow.Kinds {
		stale, err := s.deps.Approvals.ListStale(ctx, kind, before)
		if err != nil {
			return sent, err
		}

		for _, rec := range stale {
			out, err := workflow.Reminder(rec.Route, rec.Status)
			if err != nil {
				continue
			}

			msg := RequestNotice{
				Kind:      kind,
				RequestID: rec.ID,
				Employee:  s.userName(ctx, names, rec.Route.EmployeeID),
				Summary:   rec.Summary,
				Status:    rec.Status,
			}
			s.notifier.Notify(ctx, out.Notices, msg)
			if out.NotifyAdmins {
				s.notifier.NotifyAdmins(ctx, out.AdminEvent, msg, rec.Route.EmployeeID)
			}

			if err := s.deps.Approvals.MarkReminded(ctx, kind, rec.ID, now); err != nil {
				return sent, err
			}
			sent++
		}
	}
	return sent, nil
}

// remindCheckouts runs once the workday (plus the configured slack) is
// over, on workdays only. Each open record is reminded once.
func (s *sweeper) remindCheckouts(ctx context.Context, now time.Time) (int, error) {
	today := tz.Today(s.loc, now)
	if tz.IsWeekend(today, s.policy.WeekendDays()) {
		return 0, nil
	}
	if minuteOfDay(now, s.loc) < s.policy.EndMinutes()+s.policy.Workday.CheckoutReminderAfterMinutes {
		return 0, nil
	}

	open, err := s.deps.Attendance.ListOpen(ctx, today)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, a := range open {
		s.notifier.NotifyCheckoutReminder(ctx, a.EmployeeID, *a.CheckIn)
		if err := s.deps.Attendance.MarkCheckoutReminded(ctx, a.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (s *sweeper) housekeeping(ctx context.Context, now time.Time) {
	logger := log.With().Str("component", "sweeper").Logger()

	if n, err := s.deps.Sessions.DeleteExpired(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to purge expired sessions")
	} else if n > 0 {
		logger.Debug().Int64("count", n).Msg("purged expired sessions")
	}
	if err := s.deps.ResetTokens.DeleteExpired(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to purge expired reset tokens")
	}
	if n, err := s.deps.Notifications.DeleteReadBefore(ctx, database.Timestamp(now.Add(-readNotificationTTL))); err != nil {
		logger.Warn().Err(err).Msg("failed to purge old notifications")
	} else if n > 0 {
		logger.Debug().Int64("count", n).Msg("purged read notifications")
	}
}

func (s *sweeper) userName(ctx context.Context, cache map[string]string, id string) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name := ""
	if u, err := s.deps.Users.GetByID(ctx, id); err == nil {
		name = u.FullName
	}
	cache[id] = name
	return name
}
