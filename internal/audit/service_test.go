package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatline/internal/config"
	"chatline/internal/constants"
	"chatline/internal/logger"
	"chatline/pkg/models"
)

type fakeRepo struct {
	entries []LogEntry
}

func (f *fakeRepo) Append(ctx context.Context, entry LogEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]LogEntry, error) {
	return f.entries, nil
}

type fakeStore struct {
	claimed  map[string]bool
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{claimed: make(map[string]bool)}
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	if f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	return true, nil
}

func testEvent(action models.Action, id int64) models.AuditEvent {
	return models.AuditEvent{
		Action: action,
		Entity: models.EntityMessage,
		Content: models.Message{
			ID:        id,
			GroupID:   1,
			SenderID:  42,
			Content:   "hello",
			CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
}

func TestService_Record_AppendsEntry(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, logger.NopLogger())

	err := svc.Record(context.Background(), testEvent(models.ActionCreate, 7))
	require.NoError(t, err)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, int64(42), entry.UserID)
	assert.Equal(t, models.EntityMessage, entry.Entity)
	assert.Equal(t, int64(7), entry.EntityID)
	assert.Equal(t, "CREATE", entry.Action)
	assert.False(t, entry.Deleted)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestService_Record_DeleteMarksDeleted(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, logger.NopLogger())

	err := svc.Record(context.Background(), testEvent(models.ActionDelete, 7))
	require.NoError(t, err)

	require.Len(t, repo.entries, 1)
	assert.True(t, repo.entries[0].Deleted)
	assert.Equal(t, "DELETE", repo.entries[0].Action)
}

func TestService_Record_EveryActionGetsOwnRow(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, logger.NopLogger())

	require.NoError(t, svc.Record(context.Background(), testEvent(models.ActionCreate, 7)))
	require.NoError(t, svc.Record(context.Background(), testEvent(models.ActionUpdate, 7)))
	require.NoError(t, svc.Record(context.Background(), testEvent(models.ActionDelete, 7)))

	assert.Len(t, repo.entries, 3)
}

func dedupConfig(onError string) config.IdempotencyConfig {
	return config.IdempotencyConfig{
		Enabled:       true,
		HashAlgorithm: "md5",
		TTLSeconds:    300,
		OnRedisError:  onError,
	}
}

func TestService_Record_DuplicateDeliverySkipped(t *testing.T) {
	repo := &fakeRepo{}
	dedup := NewDeduplicator(newFakeStore(), dedupConfig(constants.FallbackAllow), logger.NopLogger())
	svc := NewService(repo, dedup, logger.NopLogger())

	event := testEvent(models.ActionCreate, 7)
	require.NoError(t, svc.Record(context.Background(), event))
	require.NoError(t, svc.Record(context.Background(), event))

	assert.Len(t, repo.entries, 1)
}

func TestService_Record_DistinctEventsNotDeduped(t *testing.T) {
	repo := &fakeRepo{}
	dedup := NewDeduplicator(newFakeStore(), dedupConfig(constants.FallbackAllow), logger.NopLogger())
	svc := NewService(repo, dedup, logger.NopLogger())

	create := testEvent(models.ActionCreate, 7)
	update := testEvent(models.ActionUpdate, 7)
	update.Content.UpdatedAt = update.Content.UpdatedAt.Add(time.Second)

	require.NoError(t, svc.Record(context.Background(), create))
	require.NoError(t, svc.Record(context.Background(), update))

	assert.Len(t, repo.entries, 2)
}

func TestService_Record_RedisErrorFallbackAllow(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeStore()
	store.failWith = fmt.Errorf("redis gone")
	dedup := NewDeduplicator(store, dedupConfig(constants.FallbackAllow), logger.NopLogger())
	svc := NewService(repo, dedup, logger.NopLogger())

	err := svc.Record(context.Background(), testEvent(models.ActionCreate, 7))
	require.NoError(t, err)
	assert.Len(t, repo.entries, 1)
}

func TestService_Record_RedisErrorFallbackDeny(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeStore()
	store.failWith = fmt.Errorf("redis gone")
	dedup := NewDeduplicator(store, dedupConfig(constants.FallbackDeny), logger.NopLogger())
	svc := NewService(repo, dedup, logger.NopLogger())

	err := svc.Record(context.Background(), testEvent(models.ActionCreate, 7))
	require.Error(t, err)
	assert.Empty(t, repo.entries)
}
