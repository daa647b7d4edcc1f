package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/pkg/errors"
	"chatline/pkg/models"
)

type fakeRepo struct {
	messages map[int64]models.Message
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{messages: make(map[int64]models.Message)}
}

func (f *fakeRepo) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	f.nextID++
	msg.ID = f.nextID
	now := time.Now().UTC()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	f.messages[msg.ID] = msg
	return msg, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (models.Message, error) {
	msg, ok := f.messages[id]
	if !ok {
		return models.Message{}, errors.ErrNotFound
	}
	return msg, nil
}

func (f *fakeRepo) List(ctx context.Context, groupID int64, limit, offset int) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range f.messages {
		if msg.GroupID == groupID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, content string) (models.Message, error) {
	msg, ok := f.messages[id]
	if !ok {
		return models.Message{}, errors.ErrNotFound
	}
	msg.Content = content
	msg.UpdatedAt = time.Now().UTC()
	f.messages[id] = msg
	return msg, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) (models.Message, error) {
	msg, ok := f.messages[id]
	if !ok {
		return models.Message{}, errors.ErrNotFound
	}
	delete(f.messages, id)
	return msg, nil
}

func (f *fakeRepo) Censor(ctx context.Context, id int64, content string) (bool, error) {
	msg, ok := f.messages[id]
	if !ok {
		return false, nil
	}
	msg.Content = content
	msg.UpdatedAt = time.Now().UTC()
	f.messages[id] = msg
	return true, nil
}

type publishedMessage struct {
	topic   string
	key     string
	payload interface{}
}

type fakeProducer struct {
	published []publishedMessage
	failWith  error
}

func (f *fakeProducer) Publish(ctx context.Context, topic string, key []byte, payload interface{}) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.published = append(f.published, publishedMessage{topic: topic, key: string(key), payload: payload})
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func (f *fakeProducer) onTopic(topic string) []publishedMessage {
	var out []publishedMessage
	for _, p := range f.published {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

type recordedBroadcast struct {
	eventType string
	message   models.Message
}

type fakeBroadcaster struct {
	events []recordedBroadcast
}

func (f *fakeBroadcaster) Broadcast(ctx context.Context, eventType string, msg models.Message) error {
	f.events = append(f.events, recordedBroadcast{eventType: eventType, message: msg})
	return nil
}

func createRequest() CreateMessageRequest {
	return CreateMessageRequest{
		GroupID:        1,
		SenderID:       42,
		SenderUsername: "alice",
		SenderBgColor:  "#ff0000",
		Content:        "hello",
	}
}

func TestService_CreateMessage_PublishesBothEvents(t *testing.T) {
	repo := newFakeRepo()
	producer := &fakeProducer{}
	svc := NewService(repo, producer, nil, logger.NopLogger())

	msg, err := svc.CreateMessage(context.Background(), createRequest())
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)

	auditPublished := producer.onTopic(constants.TopicChatToLogs)
	require.Len(t, auditPublished, 1)
	auditEvent, ok := auditPublished[0].payload.(models.AuditEvent)
	require.True(t, ok)
	assert.Equal(t, models.ActionCreate, auditEvent.Action)
	assert.Equal(t, models.EntityMessage, auditEvent.Entity)
	assert.Equal(t, msg.ID, auditEvent.Content.ID)
	assert.Equal(t, int64(42), auditEvent.Content.SenderID)

	moderationPublished := producer.onTopic(constants.TopicChatToModerator)
	require.Len(t, moderationPublished, 1)
	moderationEvent, ok := moderationPublished[0].payload.(models.ModerationEvent)
	require.True(t, ok)
	assert.Equal(t, models.ActionCreate, moderationEvent.Action)
	assert.Equal(t, "hello", moderationEvent.Message.Content)
	assert.Equal(t, fmt.Sprintf("%d", msg.ID), moderationPublished[0].key)
}

func TestService_CreateMessage_PublishFailureDoesNotFailRequest(t *testing.T) {
	repo := newFakeRepo()
	producer := &fakeProducer{failWith: fmt.Errorf("broker down")}
	svc := NewService(repo, producer, nil, logger.NopLogger())

	msg, err := svc.CreateMessage(context.Background(), createRequest())
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)

	stored, err := repo.GetByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)
}

func TestService_CreateMessage_DefaultsGroup(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeProducer{}, nil, logger.NopLogger())

	req := createRequest()
	req.GroupID = 0

	msg, err := svc.CreateMessage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.GroupID)
}

func TestService_UpdateMessage_PublishesUpdateEvents(t *testing.T) {
	repo := newFakeRepo()
	producer := &fakeProducer{}
	svc := NewService(repo, producer, nil, logger.NopLogger())

	msg, err := svc.CreateMessage(context.Background(), createRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateMessage(context.Background(), msg.ID, UpdateMessageRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	moderationPublished := producer.onTopic(constants.TopicChatToModerator)
	require.Len(t, moderationPublished, 2)
	event := moderationPublished[1].payload.(models.ModerationEvent)
	assert.Equal(t, models.ActionUpdate, event.Action)
	assert.Equal(t, "edited", event.Message.Content)
}

func TestService_UpdateMessage_NotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeProducer{}, nil, logger.NopLogger())

	_, err := svc.UpdateMessage(context.Background(), 999, UpdateMessageRequest{Content: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestService_DeleteMessage_PublishesDeleteEvents(t *testing.T) {
	repo := newFakeRepo()
	producer := &fakeProducer{}
	svc := NewService(repo, producer, nil, logger.NopLogger())

	msg, err := svc.CreateMessage(context.Background(), createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMessage(context.Background(), msg.ID))

	auditPublished := producer.onTopic(constants.TopicChatToLogs)
	require.Len(t, auditPublished, 2)
	event := auditPublished[1].payload.(models.AuditEvent)
	assert.Equal(t, models.ActionDelete, event.Action)
	// the deleted message still rides along so the consumers know what died
	assert.Equal(t, msg.ID, event.Content.ID)

	_, err = repo.GetByID(context.Background(), msg.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestService_ApplyCensorship_ReplacesContent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeProducer{}, nil, logger.NopLogger())

	msg, err := svc.CreateMessage(context.Background(), createRequest())
	require.NoError(t, err)

	err = svc.ApplyCensorship(context.Background(), models.CensorshipDirective{MessageID: msg.ID})
	require.NoError(t, err)

	censored, err := repo.GetByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RedactionMessage, censored.Content)
}

func TestService_ApplyCensorship_MissingMessageIsNoOp(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeProducer{}, nil, logger.NopLogger())

	err := svc.ApplyCensorship(context.Background(), models.CensorshipDirective{MessageID: 404})
	require.NoError(t, err)
}

func TestService_Broadcasts(t *testing.T) {
	repo := newFakeRepo()
	broadcaster := &fakeBroadcaster{}
	svc := NewService(repo, &fakeProducer{}, broadcaster, logger.NopLogger())

	msg, err := svc.CreateMessage(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = svc.UpdateMessage(context.Background(), msg.ID, UpdateMessageRequest{Content: "edited"})
	require.NoError(t, err)

	require.NoError(t, svc.ApplyCensorship(context.Background(), models.CensorshipDirective{MessageID: msg.ID}))
	require.NoError(t, svc.DeleteMessage(context.Background(), msg.ID))

	require.Len(t, broadcaster.events, 4)
	assert.Equal(t, EventMessageCreated, broadcaster.events[0].eventType)
	assert.Equal(t, EventMessageUpdated, broadcaster.events[1].eventType)
	assert.Equal(t, EventMessageCensored, broadcaster.events[2].eventType)
	assert.Equal(t, constants.RedactionMessage, broadcaster.events[2].message.Content)
	assert.Equal(t, EventMessageDeleted, broadcaster.events[3].eventType)
}
