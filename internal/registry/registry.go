// Package registry provides the group fanout primitive behind the
// realtime layer: named groups that sessions subscribe to and that
// serialized frames are published into. Frames published to a group reach
// every currently subscribed handle in submit order.
package registry

// Handle is the opaque delivery endpoint the registry uses to address one
// session. Deliver must not block; it reports false when the frame could
// not be accepted (session gone or its buffer full), which the registry
// treats as a skip, never an error.
type Handle interface {
	Key() string
	Deliver(frame []byte) bool
}

type Registry interface {
	// Subscribe adds the handle to the group. Adding an existing member
	// is a no-op.
	Subscribe(group string, h Handle) error

	// Unsubscribe removes the handle from the group. Removing an absent
	// member is a no-op.
	Unsubscribe(group string, h Handle) error

	// Publish fans the frame out to every handle subscribed to the group.
	Publish(group string, frame []byte) error

	// Unicast delivers the frame to a single handle.
	Unicast(h Handle, frame []byte) error

	Close() error
}
