package database

import (
	"context"
	"errors"
	"testing"

	"github.com/example/langportal/pkg/models"
)

func newSession(userID string, created string, status models.SessionStatus) *models.StudySession {
	return &models.StudySession{
		UserID: userID,
		SessionData: models.SessionData{
			WordsStudied:     []string{"w1", "w2"},
			CorrectAnswers:   3,
			IncorrectAnswers: 1,
			Duration:         120,
		},
		Status:    status,
		CreatedAt: ts(created),
	}
}

func TestStudySessionCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewStudySessionRepository(openTestDB(t))

	s := newSession("u1", "2026-01-02T10:00:00Z", models.StatusInProgress)
	s.Performance.Accuracy = 75
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" {
		t.Fatal("Create should assign an ID")
	}

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UserID != "u1" || got.Status != models.StatusInProgress {
		t.Errorf("unexpected session %+v", got)
	}
	if len(got.SessionData.WordsStudied) != 2 || got.SessionData.WordsStudied[1] != "w2" {
		t.Errorf("words studied = %v", got.SessionData.WordsStudied)
	}
	if got.Performance.Accuracy != 75 {
		t.Errorf("accuracy = %v", got.Performance.Accuracy)
	}
	if !got.CreatedAt.Equal(s.CreatedAt) {
		t.Errorf("created at = %v, want %v", got.CreatedAt, s.CreatedAt)
	}
	if got.CompletedAt != nil {
		t.Errorf("completed at should be nil, got %v", got.CompletedAt)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStudySessionListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	repo := NewStudySessionRepository(openTestDB(t))

	fixtures := []*models.StudySession{
		newSession("u1", "2026-01-01T10:00:00Z", models.StatusCompleted),
		newSession("u1", "2026-01-02T10:00:00Z", models.StatusInProgress),
		newSession("u1", "2026-01-03T10:00:00Z", models.StatusCompleted),
		newSession("u1", "2026-01-04T10:00:00Z", models.StatusInterrupted),
		newSession("u2", "2026-01-03T11:00:00Z", models.StatusCompleted),
	}
	for _, s := range fixtures {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, total, err := repo.List(ctx, SessionFilter{UserID: "u1", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Fatalf("total = %d, len = %d, want 4", total, len(all))
	}
	if all[0].ID != fixtures[3].ID {
		t.Errorf("newest session should come first")
	}

	completed, total, err := repo.List(ctx, SessionFilter{UserID: "u1", Status: models.StatusCompleted, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(completed) != 2 {
		t.Errorf("completed total = %d, len = %d", total, len(completed))
	}

	start, end := ts("2026-01-02T00:00:00Z"), ts("2026-01-03T23:59:59Z")
	ranged, total, err := repo.List(ctx, SessionFilter{UserID: "u1", StartDate: &start, EndDate: &end, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(ranged) != 2 {
		t.Errorf("ranged total = %d, len = %d", total, len(ranged))
	}

	page2, total, err := repo.List(ctx, SessionFilter{UserID: "u1", Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 4 || len(page2) != 1 || page2[0].ID != fixtures[0].ID {
		t.Errorf("page 2 = %d rows (total %d)", len(page2), total)
	}
}

func TestStudySessionTransitionIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewStudySessionRepository(openTestDB(t))

	s := newSession("u1", "2026-01-02T10:00:00Z", models.StatusInProgress)
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := ts("2026-01-02T10:30:00Z")
	if err := repo.TransitionStatus(ctx, s.ID, models.StatusInProgress, models.StatusCompleted, at); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	err := repo.TransitionStatus(ctx, s.ID, models.StatusInProgress, models.StatusCompleted, at)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second transition error = %v, want ErrConflict", err)
	}

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status = %s", got.Status)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(at) {
		t.Errorf("completed at = %v, want %v", got.CompletedAt, at)
	}

	got.SessionData.CorrectAnswers = 99
	if err := repo.Update(ctx, got); !errors.Is(err, ErrConflict) {
		t.Errorf("Update on terminal session error = %v, want ErrConflict", err)
	}
}

func TestStudySessionDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewStudySessionRepository(openTestDB(t))

	s := newSession("u1", "2026-01-02T10:00:00Z", models.StatusInProgress)
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}
