package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectNotification is the subject prefix events are published on; the
// recipient id is appended (matching.notification.<user_id>).
const SubjectNotification = "matching.notification"

// Event is the JSON payload published for every notification.
type Event struct {
	UserID  uint64    `json:"user_id"`
	Kind    string    `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		Name:          "matching",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// Connect dials NATS with reconnect logging.
func Connect(cfg NATSConfig, log *slog.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("nats connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	log.Info("nats connected", "url", nc.ConnectedUrl())
	return nc, nil
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// Publisher turns notifications into NATS events for downstream delivery
// (push, email) owned by other services.
type Publisher struct {
	conn publisher
	now  func() time.Time
}

// NewPublisher accepts a *nats.Conn or anything with the same Publish.
func NewPublisher(conn publisher) *Publisher {
	return &Publisher{conn: conn, now: time.Now}
}

// Subject returns the per-recipient subject.
func Subject(userID uint64) string {
	return SubjectNotification + "." + strconv.FormatUint(userID, 10)
}

func (p *Publisher) Create(_ context.Context, userID uint64, kind, title, message string) error {
	data, err := json.Marshal(Event{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
		At:      p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}
	if err := p.conn.Publish(Subject(userID), data); err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}
	return nil
}
