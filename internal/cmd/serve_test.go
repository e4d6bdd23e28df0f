package cmd

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"delegation-api/internal/delegation"
	"delegation-api/internal/models"
	"delegation-api/internal/realtime"
	"delegation-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

type captureClient struct {
	mu       sync.Mutex
	messages [][]byte
}

func (c *captureClient) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
	return true
}

func (c *captureClient) Close() {}

func TestOverdueSweeperNotifiesExecutors(t *testing.T) {
	db := testutil.NewTestDB(t)
	staff := testutil.SeedStaff(t, db, "Ann")
	late := testutil.SeedTask(t, db, models.Task{Name: "Late", CurrentDeadline: testutil.Date(t, "2020-01-01")})
	require.NoError(t, db.Create(&models.TaskExecutor{TaskID: late.ID, StaffID: staff.ID}).Error)

	client := &captureClient{}
	realtime.GetHub().Register(staff.ID, client)
	defer realtime.GetHub().Unregister(staff.ID, client)

	changed, err := newOverdueSweeper(delegation.New(db), "@daily").RunNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint{late.ID}, changed)

	require.Len(t, client.messages, 1)
	var event realtime.Event
	require.NoError(t, json.Unmarshal(client.messages[0], &event))
	require.Equal(t, realtime.TaskOverdue, event.Type)
	require.Equal(t, late.ID, event.TaskID)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["serve"])
	require.True(t, names["migrate"])
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}
