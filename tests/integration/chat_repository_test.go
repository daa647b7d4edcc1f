package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatline/internal/chat"
	"chatline/internal/constants"
	"chatline/pkg/errors"
	"chatline/pkg/models"
)

func TestChatRepository_CreateAndGet(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := chat.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Message{
		GroupID:        1,
		SenderID:       42,
		SenderUsername: "alice",
		SenderBgColor:  "#ff0000",
		Content:        "hello",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	retrieved, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
	assert.Equal(t, "hello", retrieved.Content)
	assert.Equal(t, int64(42), retrieved.SenderID)
	assert.Equal(t, "alice", retrieved.SenderUsername)
}

func TestChatRepository_GetNotFound(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := chat.NewRepository(infra.PostgresDB)

	_, err := repo.GetByID(context.Background(), 999999)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestChatRepository_ListOrderedOldestFirst(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := chat.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, models.Message{
			GroupID:        1,
			SenderID:       42,
			SenderUsername: "alice",
			Content:        content,
		})
		require.NoError(t, err)
		time.Sleep(timestampDelay)
	}

	list, err := repo.List(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "third", list[2].Content)
}

func TestChatRepository_ListFiltersByGroup(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := chat.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	_, err := repo.Create(ctx, models.Message{GroupID: 1, SenderID: 42, SenderUsername: "alice", Content: "group one"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.Message{GroupID: 2, SenderID: 42, SenderUsername: "alice", Content: "group two"})
	require.NoError(t, err)

	list, err := repo.List(ctx, 2, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "group two", list[0].Content)
}

func TestChatRepository_Update(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := chat.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Message{GroupID: 1, SenderID: 42, SenderUsername: "alice", Content: "before"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, "after")
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Content)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))

	_, err = repo.Update(ctx, 999999, "nope")
	assert.True(t, errors.IsNotFound(err))
}

func TestChatRepository_Delete(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := chat.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Message{GroupID: 1, SenderID: 42, SenderUsername: "alice", Content: "doomed"})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "doomed", deleted.Content)

	_, err = repo.GetByID(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))

	_, err = repo.Delete(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestChatRepository_Censor(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := chat.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Message{GroupID: 1, SenderID: 42, SenderUsername: "alice", Content: "something rude"})
	require.NoError(t, err)

	applied, err := repo.Censor(ctx, created.ID, constants.RedactionMessage)
	require.NoError(t, err)
	assert.True(t, applied)

	censored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RedactionMessage, censored.Content)
}

func TestChatRepository_CensorMissingMessage(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := chat.NewRepository(infra.PostgresDB)

	applied, err := repo.Censor(context.Background(), 999999, constants.RedactionMessage)
	require.NoError(t, err)
	assert.False(t, applied)
}
