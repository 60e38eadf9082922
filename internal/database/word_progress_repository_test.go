package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/langportal/pkg/models"
)

func newProgress(userID, wordID string, mastery float64, next time.Time) *models.WordProgress {
	return &models.WordProgress{
		UserID:        userID,
		WordID:        wordID,
		MasteryLevel:  mastery,
		TimesReviewed: 1,
		ReviewHistory: models.ReviewHistory{
			{Date: next.Add(-24 * time.Hour), Correct: true, ResponseTime: 4.5},
		},
		NextReviewDate: &next,
	}
}

func TestWordProgressCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewWordProgressRepository(openTestDB(t))

	missing, err := repo.GetByUserAndWord(ctx, "u1", "w1")
	if err != nil || missing != nil {
		t.Fatalf("GetByUserAndWord(missing) = %v, %v; want nil, nil", missing, err)
	}

	p := newProgress("u1", "w1", 40, ts("2026-01-05T10:00:00Z"))
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByUserAndWord(ctx, "u1", "w1")
	if err != nil {
		t.Fatalf("GetByUserAndWord: %v", err)
	}
	if got.MasteryLevel != 40 || got.TimesReviewed != 1 || got.Version != 1 {
		t.Errorf("unexpected progress %+v", got)
	}
	if len(got.ReviewHistory) != 1 || got.ReviewHistory[0].ResponseTime != 4.5 {
		t.Errorf("review history = %+v", got.ReviewHistory)
	}

	stale := *got
	got.MasteryLevel = 55
	got.TimesReviewed = 2
	got.ReviewHistory = append(got.ReviewHistory, models.ReviewEntry{Date: ts("2026-01-05T11:00:00Z"), Correct: true})
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("version after update = %d, want 2", got.Version)
	}

	stale.MasteryLevel = 10
	if err := repo.Update(ctx, &stale); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale Update error = %v, want ErrConflict", err)
	}

	reread, err := repo.GetByUserAndWord(ctx, "u1", "w1")
	if err != nil {
		t.Fatalf("GetByUserAndWord: %v", err)
	}
	if reread.MasteryLevel != 55 || len(reread.ReviewHistory) != 2 {
		t.Errorf("stale write leaked: %+v", reread)
	}
}

func TestWordProgressUniquePerUserAndWord(t *testing.T) {
	ctx := context.Background()
	repo := NewWordProgressRepository(openTestDB(t))

	if err := repo.Create(ctx, newProgress("u1", "w1", 10, ts("2026-01-05T10:00:00Z"))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// a second insert for the pair is a lost race the caller can retry
	if err := repo.Create(ctx, newProgress("u1", "w1", 20, ts("2026-01-05T10:00:00Z"))); !errors.Is(err, ErrConflict) {
		t.Fatalf("second row for the same (user, word): error = %v, want ErrConflict", err)
	}
	if err := repo.Create(ctx, newProgress("u2", "w1", 20, ts("2026-01-05T10:00:00Z"))); err != nil {
		t.Fatalf("other user should get its own row: %v", err)
	}
}

func TestWordProgressDueAndStatistics(t *testing.T) {
	ctx := context.Background()
	repo := NewWordProgressRepository(openTestDB(t))
	now := ts("2026-01-10T12:00:00Z")

	rows := []*models.WordProgress{
		newProgress("u1", "overdue", 20, now.Add(-48*time.Hour)),
		newProgress("u1", "due-now", 50, now.Add(-time.Hour)),
		newProgress("u1", "tonight", 85, now.Add(6*time.Hour)),
		newProgress("u1", "later", 95, now.Add(72*time.Hour)),
		newProgress("u2", "other-user", 10, now.Add(-time.Hour)),
	}
	for _, p := range rows {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	due, err := repo.GetDueForUser(ctx, "u1", now, 0)
	if err != nil {
		t.Fatalf("GetDueForUser: %v", err)
	}
	if len(due) != 2 || due[0].WordID != "overdue" || due[1].WordID != "due-now" {
		t.Errorf("due = %+v", due)
	}

	limited, err := repo.GetDueForUser(ctx, "u1", now, 1)
	if err != nil {
		t.Fatalf("GetDueForUser: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited due = %d rows", len(limited))
	}

	count, err := repo.CountDueForUser(ctx, "u1", now)
	if err != nil || count != 2 {
		t.Errorf("CountDueForUser = %d, %v", count, err)
	}

	stats, err := repo.GetUserStatistics(ctx, "u1", now)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if stats.TotalWords != 4 || stats.DueToday != 3 || stats.Mastered != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AverageMastery != 62.5 {
		t.Errorf("average mastery = %v, want 62.5", stats.AverageMastery)
	}

	empty, err := repo.GetUserStatistics(ctx, "nobody", now)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if empty.TotalWords != 0 || empty.AverageMastery != 0 {
		t.Errorf("empty stats = %+v", empty)
	}

	all, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 4 || all[0].WordID != "overdue" {
		t.Errorf("ListByUser should return weakest first, got %+v", all)
	}
}
