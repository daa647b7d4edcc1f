package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatline/internal/audit"
	"chatline/pkg/models"
)

func appendTestEntry(t *testing.T, repo audit.Repository, userID, entityID int64, action string) audit.LogEntry {
	t.Helper()

	entry := audit.LogEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Entity:    models.EntityMessage,
		EntityID:  entityID,
		Action:    action,
		Deleted:   action == "DELETE",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}

func TestAuditRepository_AppendAndList(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)

	repo := audit.NewRepository(infra.MongoDB)
	ctx := context.Background()

	entry := appendTestEntry(t, repo, 42, 7, "CREATE")

	entries, err := repo.List(ctx, audit.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, int64(42), entries[0].UserID)
	assert.Equal(t, int64(7), entries[0].EntityID)
	assert.Equal(t, "CREATE", entries[0].Action)
	assert.False(t, entries[0].Deleted)
}

func TestAuditRepository_ListNewestFirst(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)

	repo := audit.NewRepository(infra.MongoDB)
	ctx := context.Background()

	appendTestEntry(t, repo, 42, 7, "CREATE")
	time.Sleep(timestampDelay)
	appendTestEntry(t, repo, 42, 7, "UPDATE")
	time.Sleep(timestampDelay)
	appendTestEntry(t, repo, 42, 7, "DELETE")

	entries, err := repo.List(ctx, audit.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "DELETE", entries[0].Action)
	assert.Equal(t, "CREATE", entries[2].Action)
}

func TestAuditRepository_ListFilters(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)

	repo := audit.NewRepository(infra.MongoDB)
	ctx := context.Background()

	appendTestEntry(t, repo, 42, 7, "CREATE")
	appendTestEntry(t, repo, 42, 8, "CREATE")
	appendTestEntry(t, repo, 43, 7, "UPDATE")

	byUser, err := repo.List(ctx, audit.ListFilter{UserID: 43, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "UPDATE", byUser[0].Action)

	byEntity, err := repo.List(ctx, audit.ListFilter{EntityID: 7, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byEntity, 2)

	byAction, err := repo.List(ctx, audit.ListFilter{Action: "CREATE", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byAction, 2)
}

func TestAuditService_RecordWithRedisDedup(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, true)

	repo := audit.NewRepository(infra.MongoDB)
	store := audit.NewRedisStore(infra.RedisClient)
	dedup := audit.NewDeduplicator(store, createTestIdempotencyConfig(), createTestLogger())
	svc := audit.NewService(repo, dedup, createTestLogger())

	ctx := context.Background()
	event := models.AuditEvent{
		Action: models.ActionCreate,
		Entity: models.EntityMessage,
		Content: models.Message{
			ID:        7,
			SenderID:  42,
			Content:   "hello",
			UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}

	require.NoError(t, svc.Record(ctx, event))
	require.NoError(t, svc.Record(ctx, event))

	entries, err := repo.List(ctx, audit.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
