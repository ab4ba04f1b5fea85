package registry

import (
	"fmt"
	"sync"

	"flashback-app/pkg/logger"

	"github.com/nats-io/nats.go"
)

const groupSubjectPrefix = "groups."

// NATS is the broker-backed Registry. Each (group, handle) pair holds its
// own NATS subscription delivering into the handle, so group membership
// lives entirely in the broker's interest graph and publishes from other
// processes reach local sessions unchanged.
//
// Unicast bypasses the broker: handles are always local to the process
// that owns the session, so direct delivery preserves ordering with the
// frames already queued by Publish.
type NATS struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]map[string]*nats.Subscription
}

func NewNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("flashback-registry"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATS{
		conn: conn,
		subs: make(map[string]map[string]*nats.Subscription),
	}, nil
}

func (n *NATS) Subscribe(group string, h Handle) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	members, ok := n.subs[group]
	if !ok {
		members = make(map[string]*nats.Subscription)
		n.subs[group] = members
	}
	if _, ok := members[h.Key()]; ok {
		return nil
	}

	sub, err := n.conn.Subscribe(groupSubjectPrefix+group, func(msg *nats.Msg) {
		if !h.Deliver(msg.Data) {
			logger.Debug().Str("group", group).Str("session", h.Key()).Msg("dropped frame for slow or closed session")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to group %s: %w", group, err)
	}
	members[h.Key()] = sub
	return nil
}

func (n *NATS) Unsubscribe(group string, h Handle) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	members, ok := n.subs[group]
	if !ok {
		return nil
	}
	sub, ok := members[h.Key()]
	if !ok {
		return nil
	}
	delete(members, h.Key())
	if len(members) == 0 {
		delete(n.subs, group)
	}

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from group %s: %w", group, err)
	}
	return nil
}

func (n *NATS) Publish(group string, frame []byte) error {
	return n.conn.Publish(groupSubjectPrefix+group, frame)
}

func (n *NATS) Unicast(h Handle, frame []byte) error {
	if !h.Deliver(frame) {
		logger.Debug().Str("session", h.Key()).Msg("dropped unicast frame")
	}
	return nil
}

func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}
