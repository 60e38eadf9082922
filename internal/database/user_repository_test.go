package database

import (
	"context"
	"errors"
	"testing"

	"github.com/example/langportal/pkg/models"
)

func TestUserRepositoryUpsertAndNotificationQuery(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	chat := int64(4242)
	users := []*models.User{
		{ID: "u1", TelegramChatID: &chat, NotificationEnabled: true, NotificationHour: 9, WordsPerDay: 10},
		{ID: "u2", TelegramChatID: &chat, NotificationEnabled: false, NotificationHour: 9, WordsPerDay: 10},
		{ID: "u3", NotificationEnabled: true, NotificationHour: 9, WordsPerDay: 10},
		{ID: "u4", TelegramChatID: &chat, NotificationEnabled: true, NotificationHour: 10, WordsPerDay: 5},
	}
	for _, u := range users {
		if err := repo.Upsert(ctx, u); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	due, err := repo.GetUsersForNotification(ctx, 9)
	if err != nil {
		t.Fatalf("GetUsersForNotification: %v", err)
	}
	if len(due) != 1 || due[0].ID != "u1" {
		t.Errorf("users at 9 = %+v", due)
	}

	users[3].NotificationHour = 9
	users[3].WordsPerDay = 3
	if err := repo.Upsert(ctx, users[3]); err != nil {
		t.Fatalf("Upsert existing: %v", err)
	}
	got, err := repo.GetByID(ctx, "u4")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NotificationHour != 9 || got.WordsPerDay != 3 || got.TelegramChatID == nil || *got.TelegramChatID != chat {
		t.Errorf("after upsert = %+v", got)
	}

	if _, err := repo.GetByID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(nobody) error = %v", err)
	}
}
