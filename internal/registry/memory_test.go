package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHandle struct {
	key string

	mu     sync.Mutex
	frames [][]byte
	reject bool
}

func newTestHandle(key string) *testHandle {
	return &testHandle{key: key}
}

func (h *testHandle) Key() string {
	return h.key
}

func (h *testHandle) Deliver(frame []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reject {
		return false
	}
	h.frames = append(h.frames, frame)
	return true
}

func (h *testHandle) received() [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]byte, len(h.frames))
	copy(out, h.frames)
	return out
}

func TestMemorySubscribeIdempotent(t *testing.T) {
	reg := NewMemory()
	h := newTestHandle("a")

	require.NoError(t, reg.Subscribe("event_1_chat", h))
	require.NoError(t, reg.Subscribe("event_1_chat", h))

	assert.Equal(t, 1, reg.MemberCount("event_1_chat"))

	require.NoError(t, reg.Publish("event_1_chat", []byte("x")))
	assert.Len(t, h.received(), 1)
}

func TestMemoryUnsubscribe(t *testing.T) {
	reg := NewMemory()
	h := newTestHandle("a")

	require.NoError(t, reg.Subscribe("event_1_chat", h))
	require.NoError(t, reg.Unsubscribe("event_1_chat", h))
	assert.Equal(t, 0, reg.MemberCount("event_1_chat"))

	// Removing a member that is not there is a no-op.
	require.NoError(t, reg.Unsubscribe("event_1_chat", h))
	require.NoError(t, reg.Unsubscribe("never_existed", h))

	require.NoError(t, reg.Publish("event_1_chat", []byte("x")))
	assert.Empty(t, h.received())
}

func TestMemoryPublishReachesGroupOnly(t *testing.T) {
	reg := NewMemory()
	a := newTestHandle("a")
	b := newTestHandle("b")
	other := newTestHandle("c")

	require.NoError(t, reg.Subscribe("event_1_chat", a))
	require.NoError(t, reg.Subscribe("event_1_chat", b))
	require.NoError(t, reg.Subscribe("event_2_chat", other))

	require.NoError(t, reg.Publish("event_1_chat", []byte("hello")))

	assert.Equal(t, [][]byte{[]byte("hello")}, a.received())
	assert.Equal(t, [][]byte{[]byte("hello")}, b.received())
	assert.Empty(t, other.received())
}

func TestMemoryPublishOrderPerGroup(t *testing.T) {
	reg := NewMemory()
	h := newTestHandle("a")
	require.NoError(t, reg.Subscribe("event_1_chat", h))

	for i := 0; i < 10; i++ {
		require.NoError(t, reg.Publish("event_1_chat", []byte(fmt.Sprintf("m%d", i))))
	}

	frames := h.received()
	require.Len(t, frames, 10)
	for i, frame := range frames {
		assert.Equal(t, fmt.Sprintf("m%d", i), string(frame))
	}
}

func TestMemoryPublishSkipsRejectingHandle(t *testing.T) {
	reg := NewMemory()
	full := newTestHandle("full")
	full.reject = true
	ok := newTestHandle("ok")

	require.NoError(t, reg.Subscribe("event_1_chat", full))
	require.NoError(t, reg.Subscribe("event_1_chat", ok))

	// A handle refusing delivery must not fail the publish or starve the rest.
	require.NoError(t, reg.Publish("event_1_chat", []byte("x")))
	assert.Len(t, ok.received(), 1)
}

func TestMemoryUnicast(t *testing.T) {
	reg := NewMemory()
	h := newTestHandle("a")

	require.NoError(t, reg.Unicast(h, []byte("direct")))
	assert.Equal(t, [][]byte{[]byte("direct")}, h.received())
}

func TestMemoryClose(t *testing.T) {
	reg := NewMemory()
	h := newTestHandle("a")
	require.NoError(t, reg.Subscribe("event_1_chat", h))

	require.NoError(t, reg.Close())
	assert.Equal(t, 0, reg.MemberCount("event_1_chat"))
}
