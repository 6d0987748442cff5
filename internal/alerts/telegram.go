package alerts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/metrics"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
)

// ErrNotifierDisabled is returned by a notifier built without credentials.
var ErrNotifierDisabled = errors.New("telegram notifier not configured")

const (
	breakerTripAfter = 5
	breakerCooldown  = 30 * time.Second
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts alerts to a channel. Calls go through a circuit
// breaker that opens after consecutive failures.
type TelegramNotifier struct {
	sender  messageSender
	chatID  int64
	channel string
	cb      *gobreaker.CircuitBreaker
	log     *logger.Logger
}

// NewTelegramNotifier returns nil when the bot token or channel is missing;
// the evaluator then only logs out-of-range readings.
// endpoint defaults to tgbotapi.APIEndpoint.
func NewTelegramNotifier(cfg TelegramConfig, endpoint string, timeout time.Duration, m *metrics.Metrics, log *logger.Logger) *TelegramNotifier {
	log = logger.OrNop(log).Named("telegram")
	if cfg.BotToken == "" || cfg.ChannelID == "" {
		log.Warnw("telegram_not_configured")
		return nil
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	// Built directly instead of tgbotapi.NewBotAPI, which calls getMe and
	// would block startup on the Telegram API.
	bot := &tgbotapi.BotAPI{
		Token:  cfg.BotToken,
		Client: &http.Client{Timeout: timeout},
		Buffer: 100,
	}
	bot.SetAPIEndpoint(endpoint)

	n := &TelegramNotifier{sender: bot, log: log}
	n.setChat(cfg.ChannelID)
	n.cb = newBreaker(m, log)
	log.Infow("telegram_initialized", "channel", cfg.ChannelID)
	return n
}

func newBreaker(m *metrics.Metrics, log *logger.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "telegram",
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.SetBreakerState(int(to))
			log.Warnw("breaker_state_changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// setChat accepts a numeric chat id or an @channel username.
func (n *TelegramNotifier) setChat(channelID string) {
	if id, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		n.chatID = id
		return
	}
	n.channel = channelID
}

func (n *TelegramNotifier) Notify(ctx context.Context, a models.Alert) error {
	if n == nil {
		return ErrNotifierDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if n.channel != "" {
		msg = tgbotapi.NewMessageToChannel(n.channel, FormatAlert(a))
	} else {
		msg = tgbotapi.NewMessage(n.chatID, FormatAlert(a))
	}
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := n.cb.Execute(func() (interface{}, error) {
		return n.sender.Send(msg)
	})
	if err != nil {
		return fmt.Errorf("send telegram alert for %s: %w", a.Equipment, err)
	}
	n.log.Infow("alert_sent", "equipment", a.Equipment, "temperature", a.Temperature)
	return nil
}

// FormatAlert renders the Markdown text of an alert.
func FormatAlert(a models.Alert) string {
	emoji, status := "🚨", "🔥 TEMPERATURA ALTA"
	if a.Kind == models.AlertTooLow {
		emoji, status = "⚠️", "❄️ TEMPERATURA BAJA"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *ALERTA DE TEMPERATURA*\n\n", emoji)
	fmt.Fprintf(&b, "📍 *Equipo:* %s\n", a.Equipment)
	fmt.Fprintf(&b, "🌡️ *Temperatura:* *%s°C*\n", formatTemp(a.Temperature))
	fmt.Fprintf(&b, "📊 *Rango permitido:* %s°C - %s°C\n", formatTemp(a.MinTemp), formatTemp(a.MaxTemp))
	fmt.Fprintf(&b, "⚡ *Estado:* %s", status)
	return b.String()
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
