package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chatline/internal/logger"
	"chatline/pkg/metrics"
	"chatline/pkg/models"
	"chatline/pkg/tracing"
)

type Service struct {
	repo   Repository
	dedup  *Deduplicator
	logger logger.Logger
}

// NewService builds the audit service. dedup may be nil, in which case every
// delivery is recorded as-is, duplicates included.
func NewService(repo Repository, dedup *Deduplicator, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		dedup:  dedup,
		logger: log,
	}
}

// Record appends one audit entry for an event from the chat service. Every
// action, delete included, produces a row; the log is the history of the
// system, not its current state.
func (s *Service) Record(ctx context.Context, event models.AuditEvent) error {
	ctx, span := tracing.GetTracer("audit-service").Start(ctx, "audit.record")
	defer span.End()

	if s.dedup != nil {
		fresh, err := s.dedup.ShouldRecord(ctx, event)
		if err != nil {
			return err
		}
		if !fresh {
			metrics.AuditDuplicatesTotal.WithLabelValues("skipped").Inc()
			s.logger.DebugwCtx(ctx, "Skipping duplicate audit event",
				"entity_id", event.Content.ID,
				"action", event.Action,
			)
			return nil
		}
	}

	entry := LogEntry{
		ID:        uuid.New().String(),
		UserID:    event.Content.SenderID,
		Entity:    event.Entity,
		EntityID:  event.Content.ID,
		Action:    string(event.Action),
		Deleted:   event.Action == models.ActionDelete,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: event.Content.UpdatedAt,
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	metrics.AuditEntriesTotal.WithLabelValues(entry.Action).Inc()
	s.logger.InfowCtx(ctx, "Audit entry recorded",
		"entity", entry.Entity,
		"entity_id", entry.EntityID,
		"action", entry.Action,
	)
	return nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]LogEntry, error) {
	return s.repo.List(ctx, filter)
}
