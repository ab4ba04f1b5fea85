package registry

import (
	"sync"

	"flashback-app/pkg/logger"
)

// Memory is the in-process Registry used for single-node deployments and
// tests. Publish delivers synchronously under the read lock, which is what
// gives each group its FIFO ordering.
type Memory struct {
	mu     sync.RWMutex
	groups map[string]map[string]Handle
	closed bool
}

func NewMemory() *Memory {
	return &Memory{
		groups: make(map[string]map[string]Handle),
	}
}

func (m *Memory) Subscribe(group string, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.groups[group]
	if !ok {
		members = make(map[string]Handle)
		m.groups[group] = members
	}
	members[h.Key()] = h
	return nil
}

func (m *Memory) Unsubscribe(group string, h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.groups[group]
	if !ok {
		return nil
	}
	delete(members, h.Key())
	if len(members) == 0 {
		delete(m.groups, group)
	}
	return nil
}

func (m *Memory) Publish(group string, frame []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.groups[group] {
		if !h.Deliver(frame) {
			logger.Debug().Str("group", group).Str("session", h.Key()).Msg("dropped frame for slow or closed session")
		}
	}
	return nil
}

func (m *Memory) Unicast(h Handle, frame []byte) error {
	if !h.Deliver(frame) {
		logger.Debug().Str("session", h.Key()).Msg("dropped unicast frame")
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = make(map[string]map[string]Handle)
	m.closed = true
	return nil
}

// MemberCount reports how many handles are subscribed to the group.
func (m *Memory) MemberCount(group string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.groups[group])
}
