package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/example/langportal/internal/database"
	"github.com/example/langportal/internal/spaced_repetition"
	"github.com/example/langportal/pkg/models"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrValidation wraps every rejected payload
	ErrValidation = errors.New("invalid study session")
	// ErrForbidden is returned when the caller does not own the session
	ErrForbidden = errors.New("study session belongs to another user")
	// ErrInvalidTransition is returned for changes to a finished session
	ErrInvalidTransition = errors.New("study session is already finished")
)

// conflictAttempts bounds how often a transaction is retried after a lost race
const conflictAttempts = 3

// CreateInput is a new session as submitted by its owner
type CreateInput struct {
	UserID      string
	SessionData models.SessionData
	Status      models.SessionStatus // empty means in_progress
}

// DataPatch holds the session data fields a client may change; nil means unchanged
type DataPatch struct {
	WordsStudied     []string
	CorrectAnswers   *int
	IncorrectAnswers *int
	Duration         *int
}

// UpdateInput is a partial update of a session
type UpdateInput struct {
	SessionData *DataPatch
	Status      *models.SessionStatus
}

// Pagination describes one page of a listing
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ListResult is a page of sessions
type ListResult struct {
	Sessions   []models.StudySession `json:"sessions"`
	Pagination Pagination            `json:"pagination"`
}

// Service owns the study session lifecycle. Completing a session and applying
// it to word progress happen in one transaction.
type Service struct {
	db      *sqlx.DB
	updater *spaced_repetition.Updater
	now     func() time.Time
}

// NewService creates a session service; a nil clock means time.Now
func NewService(db *sqlx.DB, updater *spaced_repetition.Updater, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	if updater == nil {
		updater = spaced_repetition.NewUpdater(nil, clock)
	}
	return &Service{db: db, updater: updater, now: clock}
}

// Create stores a new session. A session created directly as completed is
// applied to word progress like any other completion.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.StudySession, error) {
	status := in.Status
	if status == "" {
		status = models.StatusInProgress
	}
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if err := validateData(in.SessionData); err != nil {
		return nil, err
	}

	base := models.StudySession{
		UserID:      in.UserID,
		SessionData: in.SessionData,
		Status:      models.StatusInProgress,
		Performance: computePerformance(in.SessionData),
		CreatedAt:   s.now().UTC(),
	}
	if base.SessionData.WordsStudied == nil {
		base.SessionData.WordsStudied = []string{}
	}

	var session *models.StudySession
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		attempt := base
		session = &attempt
		if err := database.NewStudySessionRepository(tx).Create(ctx, session); err != nil {
			return err
		}
		if status != models.StatusInProgress {
			return s.finish(ctx, tx, session, status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns a session owned by callerID
func (s *Service) Get(ctx context.Context, callerID, id string) (*models.StudySession, error) {
	session, err := database.NewStudySessionRepository(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.UserID != callerID {
		return nil, ErrForbidden
	}
	return session, nil
}

// List returns one page of a user's sessions
func (s *Service) List(ctx context.Context, filter database.SessionFilter) (*ListResult, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	sessions, total, err := database.NewStudySessionRepository(s.db).List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Sessions: sessions,
		Pagination: Pagination{
			Total: total,
			Page:  filter.Page,
			Limit: filter.Limit,
			Pages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	}, nil
}

// Update changes an in-progress session. Moving it to completed applies the
// session to word progress; the move happens at most once.
func (s *Service) Update(ctx context.Context, callerID, id string, in UpdateInput) (*models.StudySession, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
	}

	var session *models.StudySession
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		sessions := database.NewStudySessionRepository(tx)

		var err error
		session, err = sessions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if session.UserID != callerID {
			return ErrForbidden
		}
		if session.Status.Terminal() {
			return ErrInvalidTransition
		}

		if in.SessionData != nil {
			applyPatch(&session.SessionData, in.SessionData)
			if err := validateData(session.SessionData); err != nil {
				return err
			}
			session.Performance = computePerformance(session.SessionData)
			if err := sessions.Update(ctx, session); err != nil {
				return err
			}
		}

		if in.Status != nil && *in.Status != models.StatusInProgress {
			return s.finish(ctx, tx, session, *in.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Delete removes a session owned by callerID
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		sessions := database.NewStudySessionRepository(tx)
		session, err := sessions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if session.UserID != callerID {
			return ErrForbidden
		}
		return sessions.Delete(ctx, id)
	})
}

// inTx runs fn in a transaction and reruns it when a guarded write lost a
// race. A rerun sees the committed winner, so a session completed by
// another request fails with ErrInvalidTransition instead of double counting.
func (s *Service) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var err error
	for attempt := 0; attempt < conflictAttempts; attempt++ {
		err = database.WithTx(ctx, s.db, fn)
		if !errors.Is(err, database.ErrConflict) {
			return err
		}
	}
	return err
}

// finish moves an in-progress session into a terminal status inside tx
func (s *Service) finish(ctx context.Context, tx *sqlx.Tx, session *models.StudySession, to models.SessionStatus) error {
	sessions := database.NewStudySessionRepository(tx)

	if to == models.StatusCompleted {
		updated, err := s.updater.Apply(ctx, database.NewWordProgressRepository(tx), session)
		if err != nil {
			return fmt.Errorf("failed to update word progress: %w", err)
		}
		session.Performance.MasteryLevel = meanMastery(updated)
		if err := sessions.Update(ctx, session); err != nil {
			return err
		}
	}

	at := s.now().UTC()
	if err := sessions.TransitionStatus(ctx, session.ID, models.StatusInProgress, to, at); err != nil {
		return err
	}
	session.Status = to
	session.UpdatedAt = at
	if to == models.StatusCompleted {
		session.CompletedAt = &at
	}
	return nil
}

func applyPatch(data *models.SessionData, patch *DataPatch) {
	if patch.WordsStudied != nil {
		data.WordsStudied = patch.WordsStudied
	}
	if patch.CorrectAnswers != nil {
		data.CorrectAnswers = *patch.CorrectAnswers
	}
	if patch.IncorrectAnswers != nil {
		data.IncorrectAnswers = *patch.IncorrectAnswers
	}
	if patch.Duration != nil {
		data.Duration = *patch.Duration
	}
}

func validateData(data models.SessionData) error {
	if data.CorrectAnswers < 0 || data.IncorrectAnswers < 0 {
		return fmt.Errorf("%w: answer counts must be non-negative", ErrValidation)
	}
	if data.Duration < 0 {
		return fmt.Errorf("%w: duration must be non-negative", ErrValidation)
	}
	for i, w := range data.WordsStudied {
		if w == "" {
			return fmt.Errorf("%w: wordsStudied[%d] is empty", ErrValidation, i)
		}
	}
	return nil
}

func computePerformance(data models.SessionData) models.Performance {
	p := models.Performance{
		Accuracy: spaced_repetition.Accuracy(data.CorrectAnswers, data.IncorrectAnswers),
	}
	if n := len(data.WordsStudied); n > 0 {
		p.AverageResponseTime = float64(data.Duration) / float64(n)
	}
	return p
}

func meanMastery(progress []models.WordProgress) float64 {
	if len(progress) == 0 {
		return 0
	}
	var sum float64
	for _, p := range progress {
		sum += p.MasteryLevel
	}
	return sum / float64(len(progress))
}
