package audit

import (
	"go.uber.org/zap"

	"github.com/moviweb/moviweb/internal/catalog/domain"
	"github.com/moviweb/moviweb/pkg/events"
)

// Handler writes an audit log line for every catalog event.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates an audit handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger.Named("audit")}
}

// Name identifies the handler in logs.
func (h *Handler) Name() string { return "audit" }

// Handle logs the event.
func (h *Handler) Handle(event events.Event) error {
	h.logger.Info("catalog event",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Int64("timestamp", event.Timestamp()))
	return nil
}

// Register subscribes the handler to every catalog event type.
func Register(bus events.Bus, logger *zap.Logger) {
	handler := NewHandler(logger)
	for _, eventType := range []string{
		domain.EventUserCreated,
		domain.EventMovieImported,
		domain.EventFavoriteAdded,
	} {
		bus.Subscribe(eventType, handler)
	}
}
