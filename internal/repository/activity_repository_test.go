package repository

import (
	"context"
	"testing"
	"time"

	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_RecordAndList(t *testing.T) {
	repo := NewSQLiteActivityRepository(newTestDB(t))
	ctx := context.Background()

	entry := &models.ActivityLog{
		UserID:       "alice",
		ActivityType: models.ActivityItemCreated,
		Description:  `created item "Widget"`,
		EntityID:     "item-1",
		EntityType:   "item",
		Metadata:     map[string]interface{}{"title": "Widget", "stock": float64(10)},
		IPAddress:    "192.0.2.1",
		UserAgent:    "test-agent",
	}
	require.NoError(t, repo.Record(ctx, entry))
	assert.NotEmpty(t, entry.ID)

	entries, err := repo.ListByUser(ctx, "alice", 0, 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, models.ActivityItemCreated, got.ActivityType)
	assert.Equal(t, `created item "Widget"`, got.Description)
	assert.Equal(t, "item-1", got.EntityID)
	assert.Equal(t, "192.0.2.1", got.IPAddress)
	assert.Equal(t, entry.Metadata, got.Metadata)
}

func TestActivityRepository_NilMetadata(t *testing.T) {
	repo := NewSQLiteActivityRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, &models.ActivityLog{
		UserID:       "alice",
		ActivityType: models.ActivityUserLogin,
		Description:  "user logged in",
	}))

	entries, err := repo.ListByUser(ctx, "alice", 0, 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Metadata)
}

func TestActivityRepository_NewestFirstAndScoped(t *testing.T) {
	repo := NewSQLiteActivityRepository(newTestDB(t))
	ctx := context.Background()

	record := func(userID, description string) {
		require.NoError(t, repo.Record(ctx, &models.ActivityLog{
			UserID:       userID,
			ActivityType: models.ActivityItemUpdated,
			Description:  description,
		}))
		time.Sleep(1100 * time.Millisecond)
	}

	record("alice", "first")
	record("alice", "second")
	record("bob", "other user")

	entries, err := repo.ListByUser(ctx, "alice", 0, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Description)
	assert.Equal(t, "first", entries[1].Description)
}
