// Package service implements the application use cases on top of the
// repository contracts. Services return errs envelopes; repository
// sentinels never leave this package.
package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/contact-book/internal/queue"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an address. Stored emails and
// lookups both go through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool { return emailPattern.MatchString(email) }

const publishTimeout = 2 * time.Second

var now = func() time.Time { return time.Now().UTC() }

// emit publishes ev without letting a broker failure reach the caller.
func emit(ctx context.Context, events queue.Emitter, log *zap.Logger, ev queue.Event) {
	if events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := events.Publish(ctx, ev); err != nil {
		log.Warn("event publish failed", zap.String("type", ev.Type), zap.Error(err))
	}
}
