package dispatcher

import (
	"context"

	"github.com/garyjia/voucher-flow/internal/domain/event"
)

// Handler reacts to one lifecycle event
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo describes a registered handler
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}

// allEvents is the subscription key of handlers registered for every type
const allEvents event.Type = "*"
