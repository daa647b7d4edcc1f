package moderation

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"chatline/internal/broker"
	"chatline/internal/config"
	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/pkg/metrics"
	"chatline/pkg/models"
	"chatline/pkg/tracing"
)

type Service struct {
	repo             Repository
	terms            TermRepository
	producer         broker.Producer
	scanner          *TermScanner
	scannerMu        sync.RWMutex
	moderationConfig config.ModerationConfig
	logger           logger.Logger
}

func NewService(repo Repository, terms TermRepository, producer broker.Producer, cfg config.ModerationConfig, log logger.Logger) (*Service, error) {
	scanner, err := NewTermScanner(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create term scanner: %w", err)
	}

	return &Service{
		repo:             repo,
		terms:            terms,
		producer:         producer,
		scanner:          scanner,
		moderationConfig: cfg,
		logger:           log,
	}, nil
}

// Process handles one moderation event from the chat service. Create and
// update events are scanned; a message that carries forbidden terms gets a
// moderation record and a censorship directive back to the chat service.
// Delete events tear down the record for the deleted message.
func (s *Service) Process(ctx context.Context, event models.ModerationEvent) error {
	ctx, span := tracing.GetTracer("moderation-service").Start(ctx, "moderation.process")
	defer span.End()

	if event.Action == models.ActionDelete {
		return s.handleDelete(ctx, event.Message.ID)
	}

	start := time.Now()
	invalidTerms := s.scan(event.Message.Content)

	status := "clean"
	if len(invalidTerms) > 0 {
		status = "flagged"
	}
	metrics.ModerationScansTotal.WithLabelValues(status).Inc()
	metrics.ObserveScanDuration(time.Since(start), status)

	if len(invalidTerms) == 0 {
		s.logger.DebugwCtx(ctx, "Message passed moderation",
			"message_id", event.Message.ID,
		)
		return nil
	}

	record := Record{
		MessageID:      event.Message.ID,
		GroupID:        event.Message.GroupID,
		SenderID:       event.Message.SenderID,
		SenderUsername: event.Message.SenderUsername,
		SenderBgColor:  event.Message.SenderBgColor,
		Content:        event.Message.Content,
		InvalidTerms:   invalidTerms,
		CreatedAt:      event.Message.CreatedAt,
	}

	if _, err := s.repo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to record moderation result: %w", err)
	}

	s.logger.InfowCtx(ctx, "Message flagged",
		"message_id", event.Message.ID,
		"sender_id", event.Message.SenderID,
		"terms_count", len(invalidTerms),
	)

	directive := models.CensorshipDirective{MessageID: event.Message.ID}
	key := []byte(strconv.FormatInt(event.Message.ID, 10))
	if err := s.producer.Publish(ctx, constants.TopicModeratorToChat, key, directive); err != nil {
		return fmt.Errorf("failed to publish censorship directive: %w", err)
	}

	return nil
}

func (s *Service) handleDelete(ctx context.Context, messageID int64) error {
	if err := s.repo.DeleteByMessageID(ctx, messageID); err != nil {
		return fmt.Errorf("failed to remove moderation record: %w", err)
	}
	s.logger.DebugwCtx(ctx, "Moderation record removed",
		"message_id", messageID,
	)
	return nil
}

func (s *Service) scan(content string) []string {
	s.scannerMu.RLock()
	defer s.scannerMu.RUnlock()
	return s.scanner.Scan(content)
}

// ScanContent exposes the current term scan, used by the admin API to test
// terms without publishing anything.
func (s *Service) ScanContent(content string) []string {
	return s.scan(content)
}

func (s *Service) ListRecords(ctx context.Context, limit, offset int) ([]Record, error) {
	return s.repo.ListRecords(ctx, limit, offset)
}

func (s *Service) ListTerms(ctx context.Context) ([]Term, error) {
	return s.terms.ListTerms(ctx)
}

func (s *Service) CreateTerm(ctx context.Context, req CreateTermRequest) (Term, error) {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	term, err := s.terms.CreateTerm(ctx, req.Term, enabled)
	if err != nil {
		return Term{}, err
	}

	if err := s.ReloadTerms(ctx, true); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to reload terms after create",
			"error", err,
		)
	}

	return term, nil
}

func (s *Service) DeleteTerm(ctx context.Context, id string) error {
	if err := s.terms.DeleteTerm(ctx, id); err != nil {
		return err
	}

	if err := s.ReloadTerms(ctx, true); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to reload terms after delete",
			"error", err,
		)
	}

	return nil
}

func (s *Service) ReloadTerms(ctx context.Context, skipJitter ...bool) error {
	shouldSkipJitter := len(skipJitter) > 0 && skipJitter[0]

	if err := s.applyJitter(ctx, shouldSkipJitter); err != nil {
		return err
	}

	terms, err := s.terms.ListEnabledTerms(ctx)
	if err != nil {
		return fmt.Errorf("failed to load forbidden terms: %w", err)
	}

	scanner, err := NewTermScanner(terms)
	if err != nil {
		return fmt.Errorf("failed to rebuild term scanner: %w", err)
	}

	s.scannerMu.Lock()
	s.scanner = scanner
	s.scannerMu.Unlock()

	metrics.SetModerationActiveTerms(scanner.TermCount())
	s.logger.InfowCtx(ctx, "Successfully reloaded forbidden terms",
		"terms_count", scanner.TermCount(),
	)
	return nil
}

func (s *Service) applyJitter(ctx context.Context, skipJitter bool) error {
	if skipJitter || s.moderationConfig.Reload.JitterMaxMilliseconds == 0 {
		return nil
	}

	jitter := time.Duration(rand.Intn(s.moderationConfig.Reload.JitterMaxMilliseconds)) * time.Millisecond
	s.logger.DebugwCtx(ctx, "Reload scheduled with jitter",
		"jitter_ms", jitter.Milliseconds(),
	)

	select {
	case <-time.After(jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) StartReloader(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(s.moderationConfig.Reload.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	if err := s.ReloadTerms(ctx); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to reload forbidden terms",
			"error", err,
		)
	}

	for {
		select {
		case <-ticker.C:
			if err := s.ReloadTerms(ctx); err != nil {
				s.logger.ErrorwCtx(ctx, "Failed to reload forbidden terms",
					"error", err,
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
