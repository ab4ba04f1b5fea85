package realtime

import "context"

// HandlerFunc processes one inbound request. data has already passed the
// envelope shape check; anything beyond that is the handler's own
// validation, and a nil return with no broadcast is how handlers reject
// bad input. A non-nil error is a collaborator failure, judged by the
// session's error policy.
type HandlerFunc func(ctx context.Context, s *Session, data map[string]any) error

// Router maps inbound discriminators to handlers. The table is fixed at
// startup; dispatch is a plain lookup and a lookup miss means the frame is
// dropped.
type Router struct {
	routes map[int]HandlerFunc
}

func NewRouter() *Router {
	return &Router{routes: make(map[int]HandlerFunc)}
}

func (r *Router) Handle(requestType int, h HandlerFunc) {
	r.routes[requestType] = h
}

func (r *Router) Lookup(requestType int) (HandlerFunc, bool) {
	h, ok := r.routes[requestType]
	return h, ok
}
