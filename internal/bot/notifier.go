package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/langportal/internal/logger"
	"github.com/example/langportal/internal/scheduler"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends review reminders through a Telegram bot
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

// NewTelegramNotifier connects to the Bot API with token
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	logger.Infof("Authorized on Telegram account %s", api.Self.UserName)
	return &TelegramNotifier{api: api}, nil
}

// NewTelegramNotifierWithAPI wraps an existing Bot API client
func NewTelegramNotifierWithAPI(api *tgbotapi.BotAPI) *TelegramNotifier {
	return &TelegramNotifier{api: api}
}

// SendReminder implements scheduler.Notifier
func (n *TelegramNotifier) SendReminder(ctx context.Context, r scheduler.Reminder) error {
	if r.User.TelegramChatID == nil {
		return fmt.Errorf("user %s has no telegram chat", r.User.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(*r.User.TelegramChatID, FormatReminder(r))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	return nil
}

// FormatReminder renders the reminder message body
func FormatReminder(r scheduler.Reminder) string {
	var b strings.Builder
	if r.TotalDue == 1 {
		b.WriteString("You have <b>1</b> word to review!")
	} else {
		fmt.Fprintf(&b, "You have <b>%d</b> words to review!", r.TotalDue)
	}

	if len(r.Words) > 0 {
		b.WriteString("\n")
		for _, w := range r.Words {
			b.WriteString("\n• ")
			b.WriteString(escapeHTML(w.Text))
			if w.Translation != "" {
				b.WriteString(" - ")
				b.WriteString(escapeHTML(w.Translation))
			}
		}
		if rest := r.TotalDue - len(r.Words); rest > 0 {
			fmt.Fprintf(&b, "\n…and %d more", rest)
		}
	}
	return b.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
