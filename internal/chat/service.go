package chat

import (
	"context"
	"fmt"
	"strconv"

	"chatline/internal/broker"
	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/pkg/metrics"
	"chatline/pkg/models"
	"chatline/pkg/tracing"
)

type Service struct {
	repo        Repository
	producer    broker.Producer
	broadcaster Broadcaster
	logger      logger.Logger
}

func NewService(repo Repository, producer broker.Producer, broadcaster Broadcaster, log logger.Logger) *Service {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &Service{
		repo:        repo,
		producer:    producer,
		broadcaster: broadcaster,
		logger:      log,
	}
}

func (s *Service) CreateMessage(ctx context.Context, req CreateMessageRequest) (models.Message, error) {
	ctx, span := tracing.GetTracer("chat-service").Start(ctx, "chat.create_message")
	defer span.End()

	groupID := req.GroupID
	if groupID == 0 {
		groupID = 1
	}

	msg, err := s.repo.Create(ctx, models.Message{
		GroupID:        groupID,
		SenderID:       req.SenderID,
		SenderUsername: req.SenderUsername,
		SenderBgColor:  req.SenderBgColor,
		Content:        req.Content,
	})
	if err != nil {
		return models.Message{}, err
	}

	metrics.ChatMessagesTotal.WithLabelValues("create").Inc()
	s.publishEvents(ctx, models.ActionCreate, msg)
	s.broadcast(ctx, EventMessageCreated, msg)
	return msg, nil
}

func (s *Service) GetMessage(ctx context.Context, id int64) (models.Message, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListMessages(ctx context.Context, groupID int64, limit, offset int) ([]models.Message, error) {
	if groupID == 0 {
		groupID = 1
	}
	return s.repo.List(ctx, groupID, limit, offset)
}

func (s *Service) UpdateMessage(ctx context.Context, id int64, req UpdateMessageRequest) (models.Message, error) {
	ctx, span := tracing.GetTracer("chat-service").Start(ctx, "chat.update_message")
	defer span.End()

	msg, err := s.repo.Update(ctx, id, req.Content)
	if err != nil {
		return models.Message{}, err
	}

	metrics.ChatMessagesTotal.WithLabelValues("update").Inc()
	s.publishEvents(ctx, models.ActionUpdate, msg)
	s.broadcast(ctx, EventMessageUpdated, msg)
	return msg, nil
}

func (s *Service) DeleteMessage(ctx context.Context, id int64) error {
	ctx, span := tracing.GetTracer("chat-service").Start(ctx, "chat.delete_message")
	defer span.End()

	msg, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	metrics.ChatMessagesTotal.WithLabelValues("delete").Inc()
	s.publishEvents(ctx, models.ActionDelete, msg)
	s.broadcast(ctx, EventMessageDeleted, msg)
	return nil
}

// ApplyCensorship handles a directive from the moderator service. The target
// message may have been deleted while the directive was in flight; that is
// not an error, the directive is simply stale.
func (s *Service) ApplyCensorship(ctx context.Context, directive models.CensorshipDirective) error {
	ctx, span := tracing.GetTracer("chat-service").Start(ctx, "chat.apply_censorship")
	defer span.End()

	applied, err := s.repo.Censor(ctx, directive.MessageID, constants.RedactionMessage)
	if err != nil {
		metrics.CensorshipsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to apply censorship: %w", err)
	}

	if !applied {
		metrics.CensorshipsTotal.WithLabelValues("missing").Inc()
		s.logger.WarnwCtx(ctx, "Censorship directive for unknown message",
			"message_id", directive.MessageID,
		)
		return nil
	}

	metrics.CensorshipsTotal.WithLabelValues("applied").Inc()
	s.logger.InfowCtx(ctx, "Message censored",
		"message_id", directive.MessageID,
	)

	if msg, err := s.repo.GetByID(ctx, directive.MessageID); err == nil {
		s.broadcast(ctx, EventMessageCensored, msg)
	}
	return nil
}

// publishEvents sends the audit and moderation events for a mutation. The
// write already committed, so publish failures are logged and swallowed
// rather than surfaced to the API caller; the broker's durability is what
// makes the pipeline eventually consistent, not the HTTP response.
func (s *Service) publishEvents(ctx context.Context, action models.Action, msg models.Message) {
	key := []byte(strconv.FormatInt(msg.ID, 10))

	auditEvent := models.AuditEvent{
		Action:  action,
		Entity:  models.EntityMessage,
		Content: msg,
	}
	if err := s.producer.Publish(ctx, constants.TopicChatToLogs, key, auditEvent); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to publish audit event",
			"message_id", msg.ID,
			"action", action,
			"error", err,
		)
	}

	moderationEvent := models.ModerationEvent{
		Action:  action,
		Message: msg,
	}
	if err := s.producer.Publish(ctx, constants.TopicChatToModerator, key, moderationEvent); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to publish moderation event",
			"message_id", msg.ID,
			"action", action,
			"error", err,
		)
	}
}

func (s *Service) broadcast(ctx context.Context, eventType string, msg models.Message) {
	if err := s.broadcaster.Broadcast(ctx, eventType, msg); err != nil {
		metrics.BroadcastsTotal.WithLabelValues("error").Inc()
		s.logger.WarnwCtx(ctx, "Failed to broadcast message event",
			"message_id", msg.ID,
			"event", eventType,
			"error", err,
		)
		return
	}
	metrics.BroadcastsTotal.WithLabelValues("ok").Inc()
}
