// Package notify delivers SMS and email messages for jobs.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Channel is a delivery medium.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Message is one outbound notification.
type Message struct {
	JobID       string  `json:"job_id"`
	Channel     Channel `json:"channel"`
	To          string  `json:"to"`
	From        string  `json:"from,omitempty"`
	Subject     string  `json:"subject,omitempty"`
	Body        string  `json:"body"`
	TemplateKey string  `json:"template_key,omitempty"`
}

// Receipt identifies a delivered message.
type Receipt struct {
	ID string `json:"id"`
}

// Notifier sends a message and reports the provider's receipt.
type Notifier interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// ErrNoRecipient is returned when a message has no destination.
var ErrNoRecipient = errors.New("notify: message has no recipient")

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) (Receipt, error) {
	if msg.To == "" {
		return Receipt{}, ErrNoRecipient
	}
	receipt := Receipt{ID: "log-" + uuid.NewString()}
	n.logger.Info("notification",
		zap.String("receipt", receipt.ID),
		zap.String("job_id", msg.JobID),
		zap.String("channel", string(msg.Channel)),
		zap.String("template_key", msg.TemplateKey),
		zap.String("to", msg.To))
	return receipt, nil
}

// WebhookNotifier posts messages as JSON to a delivery gateway.
type WebhookNotifier struct {
	url     string
	timeout time.Duration
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{url: url, timeout: timeout}
}

type webhookResponse struct {
	ID    string `json:"id"`
	SID   string `json:"sid"`
	Error string `json:"error"`
}

func (n *WebhookNotifier) Send(_ context.Context, msg Message) (Receipt, error) {
	if msg.To == "" {
		return Receipt{}, ErrNoRecipient
	}
	agent := fiber.Post(n.url).JSON(msg).Timeout(n.timeout)
	if err := agent.Parse(); err != nil {
		return Receipt{}, fmt.Errorf("notify webhook: %w", err)
	}
	var resp webhookResponse
	code, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return Receipt{}, fmt.Errorf("notify webhook: %w", errors.Join(errs...))
	}
	if code >= 400 {
		if resp.Error == "" {
			resp.Error = fmt.Sprintf("status %d", code)
		}
		return Receipt{}, fmt.Errorf("notify webhook: %s", resp.Error)
	}
	id := resp.ID
	if id == "" {
		id = resp.SID
	}
	return Receipt{ID: id}, nil
}

// Router sends each message through the notifier registered for its channel.
type Router struct {
	routes map[Channel]Notifier
}

func NewRouter(sms, email Notifier) *Router {
	r := &Router{routes: map[Channel]Notifier{}}
	if sms != nil {
		r.routes[ChannelSMS] = sms
	}
	if email != nil {
		r.routes[ChannelEmail] = email
	}
	return r
}

func (r *Router) Send(ctx context.Context, msg Message) (Receipt, error) {
	n, ok := r.routes[msg.Channel]
	if !ok {
		return Receipt{}, fmt.Errorf("notify: no notifier for channel %q", msg.Channel)
	}
	return n.Send(ctx, msg)
}
