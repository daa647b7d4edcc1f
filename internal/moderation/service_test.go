package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatline/internal/config"
	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/pkg/errors"
	"chatline/pkg/models"
)

type fakeRepo struct {
	records map[int64]Record
	terms   []string
}

func newFakeRepo(terms ...string) *fakeRepo {
	return &fakeRepo{
		records: make(map[int64]Record),
		terms:   terms,
	}
}

func (f *fakeRepo) Upsert(ctx context.Context, record Record) (Record, error) {
	if existing, ok := f.records[record.MessageID]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.ID = "fake-id"
		record.CreatedAt = time.Now()
	}
	record.UpdatedAt = time.Now()
	f.records[record.MessageID] = record
	return record, nil
}

func (f *fakeRepo) GetByMessageID(ctx context.Context, messageID int64) (Record, error) {
	record, ok := f.records[messageID]
	if !ok {
		return Record{}, errors.ErrNotFound
	}
	return record, nil
}

func (f *fakeRepo) DeleteByMessageID(ctx context.Context, messageID int64) error {
	delete(f.records, messageID)
	return nil
}

func (f *fakeRepo) ListRecords(ctx context.Context, limit, offset int) ([]Record, error) {
	var out []Record
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo) ListEnabledTerms(ctx context.Context) ([]string, error) {
	return f.terms, nil
}

func (f *fakeRepo) ListTerms(ctx context.Context) ([]Term, error) {
	var out []Term
	for _, t := range f.terms {
		out = append(out, Term{ID: t, Term: t, Enabled: true})
	}
	return out, nil
}

func (f *fakeRepo) CreateTerm(ctx context.Context, term string, enabled bool) (Term, error) {
	f.terms = append(f.terms, term)
	return Term{ID: term, Term: term, Enabled: enabled}, nil
}

func (f *fakeRepo) DeleteTerm(ctx context.Context, id string) error {
	kept := f.terms[:0]
	for _, t := range f.terms {
		if t != id {
			kept = append(kept, t)
		}
	}
	f.terms = kept
	return nil
}

type publishedMessage struct {
	topic   string
	key     string
	payload interface{}
}

type fakeProducer struct {
	published []publishedMessage
}

func (f *fakeProducer) Publish(ctx context.Context, topic string, key []byte, payload interface{}) error {
	f.published = append(f.published, publishedMessage{topic: topic, key: string(key), payload: payload})
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func newTestService(t *testing.T, repo *fakeRepo, producer *fakeProducer) *Service {
	t.Helper()

	svc, err := NewService(repo, repo, producer, config.ModerationConfig{
		Reload: config.ReloadConfig{IntervalSeconds: 60},
	}, logger.NopLogger())
	require.NoError(t, err)
	require.NoError(t, svc.ReloadTerms(context.Background(), true))
	return svc
}

func testMessage(id int64, content string) models.Message {
	return models.Message{
		ID:             id,
		GroupID:        1,
		SenderID:       42,
		SenderUsername: "alice",
		Content:        content,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

func TestService_Process_CleanMessageIsNoOp(t *testing.T) {
	repo := newFakeRepo("bad")
	producer := &fakeProducer{}
	svc := newTestService(t, repo, producer)

	err := svc.Process(context.Background(), models.ModerationEvent{
		Action:  models.ActionCreate,
		Message: testMessage(1, "a perfectly fine message"),
	})
	require.NoError(t, err)

	assert.Empty(t, repo.records)
	assert.Empty(t, producer.published)
}

func TestService_Process_FlaggedMessagePublishesDirective(t *testing.T) {
	repo := newFakeRepo("bad")
	producer := &fakeProducer{}
	svc := newTestService(t, repo, producer)

	err := svc.Process(context.Background(), models.ModerationEvent{
		Action:  models.ActionCreate,
		Message: testMessage(7, "a bad message"),
	})
	require.NoError(t, err)

	require.Len(t, repo.records, 1)
	assert.Equal(t, []string{"bad"}, repo.records[7].InvalidTerms)

	require.Len(t, producer.published, 1)
	assert.Equal(t, constants.TopicModeratorToChat, producer.published[0].topic)
	assert.Equal(t, "7", producer.published[0].key)
	directive, ok := producer.published[0].payload.(models.CensorshipDirective)
	require.True(t, ok)
	assert.Equal(t, int64(7), directive.MessageID)
}

func TestService_Process_RepeatedScansConvergeToOneRecord(t *testing.T) {
	repo := newFakeRepo("bad")
	producer := &fakeProducer{}
	svc := newTestService(t, repo, producer)

	event := models.ModerationEvent{
		Action:  models.ActionCreate,
		Message: testMessage(7, "a bad message"),
	}

	require.NoError(t, svc.Process(context.Background(), event))
	require.NoError(t, svc.Process(context.Background(), event))
	require.NoError(t, svc.Process(context.Background(), event))

	assert.Len(t, repo.records, 1)
	// each scan still re-issues the directive, redelivery is harmless
	assert.Len(t, producer.published, 3)
}

func TestService_Process_UpdateRefreshesRecord(t *testing.T) {
	repo := newFakeRepo("bad", "worse")
	producer := &fakeProducer{}
	svc := newTestService(t, repo, producer)

	require.NoError(t, svc.Process(context.Background(), models.ModerationEvent{
		Action:  models.ActionCreate,
		Message: testMessage(7, "a bad message"),
	}))
	require.NoError(t, svc.Process(context.Background(), models.ModerationEvent{
		Action:  models.ActionUpdate,
		Message: testMessage(7, "a worse message"),
	}))

	require.Len(t, repo.records, 1)
	assert.Equal(t, []string{"worse"}, repo.records[7].InvalidTerms)
	assert.Equal(t, "a worse message", repo.records[7].Content)
}

func TestService_Process_DeleteRemovesRecord(t *testing.T) {
	repo := newFakeRepo("bad")
	producer := &fakeProducer{}
	svc := newTestService(t, repo, producer)

	require.NoError(t, svc.Process(context.Background(), models.ModerationEvent{
		Action:  models.ActionCreate,
		Message: testMessage(7, "a bad message"),
	}))
	require.Len(t, repo.records, 1)

	require.NoError(t, svc.Process(context.Background(), models.ModerationEvent{
		Action:  models.ActionDelete,
		Message: testMessage(7, "a bad message"),
	}))

	assert.Empty(t, repo.records)
	// delete never produces a new directive
	assert.Len(t, producer.published, 1)
}

func TestService_Process_DeleteOfUnknownMessageIsNoOp(t *testing.T) {
	repo := newFakeRepo("bad")
	producer := &fakeProducer{}
	svc := newTestService(t, repo, producer)

	err := svc.Process(context.Background(), models.ModerationEvent{
		Action:  models.ActionDelete,
		Message: testMessage(999, ""),
	})
	require.NoError(t, err)
	assert.Empty(t, producer.published)
}

func TestService_ReloadTerms_SwapsScanner(t *testing.T) {
	repo := newFakeRepo("bad")
	producer := &fakeProducer{}
	svc := newTestService(t, repo, producer)

	assert.Equal(t, []string{"bad"}, svc.ScanContent("bad content"))

	repo.terms = []string{"other"}
	require.NoError(t, svc.ReloadTerms(context.Background(), true))

	assert.Nil(t, svc.ScanContent("bad content"))
	assert.Equal(t, []string{"other"}, svc.ScanContent("other content"))
}

func TestService_CreateTerm_ReloadsImmediately(t *testing.T) {
	repo := newFakeRepo()
	producer := &fakeProducer{}
	svc := newTestService(t, repo, producer)

	_, err := svc.CreateTerm(context.Background(), CreateTermRequest{Term: "fresh"})
	require.NoError(t, err)

	assert.Equal(t, []string{"fresh"}, svc.ScanContent("a fresh term"))
}
