package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/example/langportal/internal/config"
	"github.com/example/langportal/internal/database"
	"github.com/example/langportal/internal/logger"
	"github.com/example/langportal/pkg/models"
	"github.com/go-co-op/gocron"
	"github.com/jmoiron/sqlx"
)

// Reminder tells a user how many words wait for review
type Reminder struct {
	User     models.User
	TotalDue int
	Words    []models.Word // most overdue first, at most WordsPerDay
}

// Notifier delivers reminders
type Notifier interface {
	SendReminder(ctx context.Context, reminder Reminder) error
}

// Scheduler periodically reminds users about due reviews
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	users     *database.UserRepository
	progress  *database.WordProgressRepository
	words     *database.WordRepository
	cfg       config.SchedulerConfig
	now       func() time.Time
}

// New creates a new scheduler instance; a nil clock means time.Now
func New(db *sqlx.DB, notifier Notifier, cfg config.SchedulerConfig, clock func() time.Time) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		users:     database.NewUserRepository(db),
		progress:  database.NewWordProgressRepository(db),
		words:     database.NewWordRepository(db),
		cfg:       cfg,
		now:       clock,
	}
}

// Start begins running the reminder job
func (s *Scheduler) Start() error {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = config.DefaultReminderInterval
	}
	_, err := s.scheduler.Every(interval).Do(func() {
		s.checkAndSendReminders(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	s.scheduler.StartAsync()
	logger.Infof("Reminder scheduler started, every %s between %02d:00 and %02d:59 UTC",
		interval, s.cfg.StartHour, s.cfg.EndHour)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminders notifies users whose reminder hour is now and returns
// how many reminders went out
func (s *Scheduler) checkAndSendReminders(ctx context.Context) int {
	now := s.now().UTC()
	hour := now.Hour()
	if hour < s.cfg.StartHour || hour > s.cfg.EndHour {
		logger.Infof("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			hour, s.cfg.StartHour, s.cfg.EndHour)
		return 0
	}

	users, err := s.users.GetUsersForNotification(ctx, hour)
	if err != nil {
		logger.Errorf("Error getting users for notification: %v", err)
		return 0
	}

	sent := 0
	for _, user := range users {
		ok, err := s.remind(ctx, user, now, user.WordsPerDay)
		if err != nil {
			logger.Errorf("Error sending reminder to user %s: %v", user.ID, err)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent
}

// RunManualCheck sends a reminder to one user right away, listing every due
// word. It reports false when nothing is due.
func (s *Scheduler) RunManualCheck(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.remind(ctx, *user, s.now().UTC(), 0)
}

// remind notifies user when anything is due; limit <= 0 lists all due words
func (s *Scheduler) remind(ctx context.Context, user models.User, now time.Time, limit int) (bool, error) {
	total, err := s.progress.CountDueForUser(ctx, user.ID, now)
	if err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}

	due, err := s.progress.GetDueForUser(ctx, user.ID, now, limit)
	if err != nil {
		return false, err
	}
	ids := make([]string, 0, len(due))
	for _, p := range due {
		ids = append(ids, p.WordID)
	}
	byID, err := s.words.GetByIDs(ctx, ids)
	if err != nil {
		return false, err
	}

	reminder := Reminder{User: user, TotalDue: total, Words: make([]models.Word, 0, len(due))}
	for _, p := range due {
		if w, ok := byID[p.WordID]; ok {
			reminder.Words = append(reminder.Words, w)
		}
	}

	if err := s.notifier.SendReminder(ctx, reminder); err != nil {
		return false, err
	}
	logger.Infof("Sent reminder to user %s for %d words", user.ID, total)
	return true, nil
}

// LogNotifier writes reminders to the log when no messenger is configured
type LogNotifier struct{}

// SendReminder implements Notifier
func (LogNotifier) SendReminder(_ context.Context, r Reminder) error {
	texts := make([]string, 0, len(r.Words))
	for _, w := range r.Words {
		texts = append(texts, w.Text)
	}
	logger.Infof("Reminder for user %s: %d words due %v", r.User.ID, r.TotalDue, texts)
	return nil
}
