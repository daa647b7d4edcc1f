package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatline/internal/moderation"
	"chatline/pkg/errors"
)

func TestModerationRepository_UpsertInsertsOnce(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := moderation.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	record, err := repo.Upsert(ctx, createTestRecord(7, "a bad message", []string{"bad"}))
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)

	retrieved, err := repo.GetByMessageID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, record.ID, retrieved.ID)
	assert.Equal(t, []string{"bad"}, retrieved.InvalidTerms)
	assert.Equal(t, "a bad message", retrieved.Content)
}

func TestModerationRepository_UpsertConvergesOnOneRow(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := moderation.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, createTestRecord(7, "a bad message", []string{"bad"}))
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, createTestRecord(7, "an even worse message", []string{"bad", "worse"}))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	records, err := repo.ListRecords(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "an even worse message", records[0].Content)
	assert.Equal(t, []string{"bad", "worse"}, records[0].InvalidTerms)
}

func TestModerationRepository_GetByMessageID_NotFound(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := moderation.NewRepository(infra.PostgresDB)

	_, err := repo.GetByMessageID(context.Background(), 999999)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestModerationRepository_DeleteByMessageID(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := moderation.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, createTestRecord(7, "a bad message", []string{"bad"}))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByMessageID(ctx, 7))

	_, err = repo.GetByMessageID(ctx, 7)
	assert.True(t, errors.IsNotFound(err))

	// deleting again is a no-op
	require.NoError(t, repo.DeleteByMessageID(ctx, 7))
}

func TestModerationRepository_Terms(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := moderation.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	created, err := repo.CreateTerm(ctx, "bad", true)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.CreateTerm(ctx, "disabled-term", false)
	require.NoError(t, err)

	enabled, err := repo.ListEnabledTerms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad"}, enabled)

	all, err := repo.ListTerms(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestModerationRepository_CreateTerm_DuplicateConflicts(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := moderation.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	_, err := repo.CreateTerm(ctx, "bad", true)
	require.NoError(t, err)

	_, err = repo.CreateTerm(ctx, "bad", true)
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
}

func TestModerationRepository_DeleteTerm(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := moderation.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	created, err := repo.CreateTerm(ctx, "bad", true)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTerm(ctx, created.ID))

	err = repo.DeleteTerm(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestModerationService_EndToEndScan(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)

	repo := moderation.NewRepository(infra.PostgresDB)
	ctx := context.Background()

	_, err := repo.CreateTerm(ctx, "heck", true)
	require.NoError(t, err)

	svc, err := moderation.NewService(repo, repo, nopProducer{}, createTestModerationConfig(), createTestLogger())
	require.NoError(t, err)
	require.NoError(t, svc.ReloadTerms(ctx, true))

	assert.Equal(t, []string{"heck"}, svc.ScanContent("what the HECK"))
	assert.Nil(t, svc.ScanContent("all good here"))
}

type nopProducer struct{}

func (nopProducer) Publish(ctx context.Context, topic string, key []byte, payload interface{}) error {
	return nil
}

func (nopProducer) Close() error { return nil }
