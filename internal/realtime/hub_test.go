package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	mu   sync.Mutex
	msgs [][]byte
	fail bool
}

func (c *recordingClient) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return false
	}
	c.msgs = append(c.msgs, message)
	return true
}

func (c *recordingClient) Close() {}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	h := NewHub()
	a1, a2, b := &recordingClient{}, &recordingClient{}, &recordingClient{}
	h.Register(1, a1)
	h.Register(1, a2)
	h.Register(2, b)
	require.Equal(t, 2, h.Connections(1))

	sent := h.Broadcast([]uint{1, 1, 3}, []byte("hi"))
	require.Equal(t, 2, sent)
	require.Len(t, a1.msgs, 1)
	require.Len(t, a2.msgs, 1)
	require.Empty(t, b.msgs)

	h.Unregister(1, a1)
	h.Unregister(1, a2)
	require.Zero(t, h.Connections(1))
	require.Zero(t, h.Broadcast([]uint{1}, []byte("gone")))
}

func TestHub_NotifyEncodesEvent(t *testing.T) {
	h := NewHub()
	c := &recordingClient{}
	h.Register(7, c)

	h.Notify([]uint{7}, Event{Type: DeadlineExtended, TaskID: 12, Data: map[string]string{"deadline": "2024-02-15"}})
	require.Len(t, c.msgs, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal(c.msgs[0], &got))
	require.Equal(t, DeadlineExtended, got["type"])
	require.EqualValues(t, 12, got["taskId"])
	require.NotEmpty(t, got["sentAt"])
}

func TestHub_FailedSendNotCounted(t *testing.T) {
	h := NewHub()
	h.Register(1, &recordingClient{fail: true})
	require.Zero(t, h.Broadcast([]uint{1}, []byte("x")))
}
