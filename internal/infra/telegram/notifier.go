package telegram

import (
	"context"
	"fmt"
	"html"

	"birthday_reminder/internal/domain/reminder"

	"gopkg.in/telebot.v3"
)

// Notifier delivers reminders to one Telegram chat.
type Notifier struct {
	client Client
	chatID int64
}

func NewNotifier(client Client, chatID int64) *Notifier {
	return &Notifier{client: client, chatID: chatID}
}

func (n *Notifier) Notify(ctx context.Context, p reminder.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := fmt.Sprintf("🎂 <b>%s</b>", html.EscapeString(p.Text))
	if err := n.client.SendMessage(n.chatID, text, &telebot.SendOptions{ParseMode: telebot.ModeHTML}); err != nil {
		return fmt.Errorf("telegram send to chat %d: %w", n.chatID, err)
	}
	return nil
}

var _ reminder.Notifier = (*Notifier)(nil)
