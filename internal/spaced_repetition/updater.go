package spaced_repetition

import (
	"context"
	"fmt"
	"time"

	"github.com/example/langportal/pkg/models"
)

// ProgressStore reads and writes per-(user, word) progress.
// GetByUserAndWord returns nil, nil when the pair has no row yet.
type ProgressStore interface {
	GetByUserAndWord(ctx context.Context, userID, wordID string) (*models.WordProgress, error)
	Create(ctx context.Context, progress *models.WordProgress) error
	Update(ctx context.Context, progress *models.WordProgress) error
}

// Updater applies a completed study session to the learner's word progress
type Updater struct {
	model *MasteryModel
	now   func() time.Time
}

// NewUpdater creates an updater; a nil clock means time.Now
func NewUpdater(model *MasteryModel, clock func() time.Time) *Updater {
	if model == nil {
		model = NewMasteryModel()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Updater{model: model, now: clock}
}

// Model returns the mastery model the updater schedules with
func (u *Updater) Model() *MasteryModel {
	return u.model
}

// Apply updates the progress of every word in the session, in order.
// Each occurrence of a word counts as its own review. The first failing
// word aborts the run and its error is returned; callers that need
// all-or-nothing semantics run Apply inside a transaction.
func (u *Updater) Apply(ctx context.Context, store ProgressStore, session *models.StudySession) ([]models.WordProgress, error) {
	words := session.SessionData.WordsStudied
	if len(words) == 0 {
		return nil, nil
	}

	accuracy := Accuracy(session.SessionData.CorrectAnswers, session.SessionData.IncorrectAnswers)
	responseTime := float64(session.SessionData.Duration) / float64(len(words))
	entry := models.ReviewEntry{
		Date:         session.CreatedAt,
		Correct:      true,
		ResponseTime: responseTime,
	}

	updated := make([]models.WordProgress, 0, len(words))
	for _, wordID := range words {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		progress, err := u.applyWord(ctx, store, session.UserID, wordID, accuracy, entry)
		if err != nil {
			return updated, fmt.Errorf("word %s: %w", wordID, err)
		}
		updated = append(updated, *progress)
	}
	return updated, nil
}

func (u *Updater) applyWord(ctx context.Context, store ProgressStore, userID, wordID string, accuracy float64, entry models.ReviewEntry) (*models.WordProgress, error) {
	progress, err := store.GetByUserAndWord(ctx, userID, wordID)
	if err != nil {
		return nil, err
	}

	isNew := progress == nil
	if isNew {
		progress = &models.WordProgress{
			UserID:       userID,
			WordID:       wordID,
			MasteryLevel: Clamp(accuracy),
		}
	} else {
		progress.MasteryLevel = u.model.Blend(progress.MasteryLevel, accuracy)
	}

	history := make(models.ReviewHistory, 0, len(progress.ReviewHistory)+1)
	history = append(history, progress.ReviewHistory...)
	progress.ReviewHistory = append(history, entry)
	progress.TimesReviewed++

	next := u.model.NextReviewDate(u.now(), progress.MasteryLevel).UTC()
	progress.NextReviewDate = &next

	if isNew {
		err = store.Create(ctx, progress)
	} else {
		err = store.Update(ctx, progress)
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}
