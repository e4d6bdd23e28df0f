package audit

import (
	"context"
	"testing"
	"time"

	"delegation-api/internal/models"
	"delegation-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestAppendAndQuery_NewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	log := New(db)
	ctx := context.Background()

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	log.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	alice := testutil.SeedStaff(t, db, "Alice")
	task := testutil.SeedTask(t, db, models.Task{Name: "T"})

	_, err := log.Append(ctx, Entry{
		TaskID:       task.ID,
		Note:         "vendor delay",
		PrevDeadline: testutil.Date(t, "2024-03-31"),
		NextDeadline: testutil.Date(t, "2024-04-15"),
		ActorID:      &alice.ID,
	})
	require.NoError(t, err)
	_, err = log.Append(ctx, Entry{
		TaskID:     task.ID,
		Note:       "deadline passed",
		PrevStatus: models.StatusPending.Ptr(),
		NextStatus: models.StatusOverdue.Ptr(),
	})
	require.NoError(t, err)

	events, err := log.Query(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	require.Equal(t, "deadline passed", events[0].Note)
	require.Nil(t, events[0].CreatedBy)
	require.Equal(t, models.StatusOverdue, *events[0].NextStatus)
	require.Empty(t, events[0].PrevDeadline)

	require.Equal(t, "vendor delay", events[1].Note)
	require.Nil(t, events[1].PrevStatus)
	require.Equal(t, "2024-03-31", events[1].PrevDeadline)
	require.Equal(t, "2024-04-15", events[1].NextDeadline)
	require.Equal(t, "Alice", events[1].CreatedBy.Name)
}

func TestQuery_EmptyAndDeleteByTask(t *testing.T) {
	db := testutil.NewTestDB(t)
	log := New(db)
	ctx := context.Background()

	events, err := log.Query(ctx, 77)
	require.NoError(t, err)
	require.Empty(t, events)

	task := testutil.SeedTask(t, db, models.Task{Name: "T"})
	_, err = log.Append(ctx, Entry{TaskID: task.ID, Note: "x"})
	require.NoError(t, err)
	require.NoError(t, log.DeleteByTask(ctx, task.ID))

	events, err = log.Query(ctx, task.ID)
	require.NoError(t, err)
	require.Empty(t, events)
}
