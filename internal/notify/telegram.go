package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAlerter posts a message to the organizers' chat for each new
// registration.
type TelegramAlerter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// telegramTimeout bounds every Bot API call; Send takes no context.
const telegramTimeout = 10 * time.Second

func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	return newTelegramAlerter(token, chatID, tgbotapi.APIEndpoint, &http.Client{Timeout: telegramTimeout})
}

func newTelegramAlerter(token string, chatID int64, endpoint string, client *http.Client) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &TelegramAlerter{bot: bot, chatID: chatID}, nil
}

// Alert returns when the message is sent or ctx is done, whichever comes
// first. An abandoned send is still cut off by the client timeout.
func (t *TelegramAlerter) Alert(ctx context.Context, a Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatAlert(a))
	msg.DisableWebPagePreview = true

	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram send: %w", ctx.Err())
	}
}

// FormatAlert renders the organizer message.
func FormatAlert(a Alert) string {
	kind := "Adultos"
	if a.Type == "minor" {
		kind = "Menores"
	}
	return fmt.Sprintf("Nueva inscripción (%s)\n%s\n%s\nAcademia: %s\nCategoría: %s",
		kind, a.RegistrationID, a.Name, a.Academy, a.Category)
}
