package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AuditQueue is the durable queue the audit consumer drains. It is bound to
// every routing key on the events exchange.
const AuditQueue = "contactbook.audit"

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// AuditLog appends one line per event to a file.
type AuditLog struct {
	mu   sync.Mutex
	path string
}

// NewAuditLog returns a log writing to path; the parent directory is
// created on first write.
func NewAuditLog(path string) *AuditLog { return &AuditLog{path: path} }

// Append writes ev as a single line.
func (a *AuditLog) Append(ev Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// FormatLine renders ev the way it appears in the audit log.
func FormatLine(ev Event) string {
	owner := ev.OwnerID
	if owner == "" {
		owner = "-"
	}
	return fmt.Sprintf("[%s] %s | actor_id=%s | subject_id=%s | owner_id=%s\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.ActorID, ev.SubjectID, owner)
}

// Consumer drains the audit queue into an AuditLog, reconnecting with
// exponential backoff whenever the broker goes away.
type Consumer struct {
	URL      string
	Exchange string
	Log      *AuditLog
	Logger   *zap.Logger
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("audit consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = minBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("audit consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warn("audit consumer: set QoS failed", zap.Error(err))
	}
	if err := declareExchange(ch, c.Exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(AuditQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(AuditQueue, "#", c.Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, AuditQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.Logger.Info("audit consumer: consuming", zap.String("queue", AuditQueue), zap.String("exchange", c.Exchange))

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.Logger.Error("audit consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	return c.Log.Append(ev)
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
