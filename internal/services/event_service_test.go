package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"flashback-app/internal/database"
	"flashback-app/internal/models"
	"flashback-app/internal/realtime"
	"flashback-app/internal/registry"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDB embeds the Database interface so tests only implement the methods
// they exercise; anything else panics with a nil dereference.
type stubDB struct {
	database.Database

	users   map[string]*models.User
	invites map[int]*models.EventInvite
	members map[int][]*models.EventMember

	codeEvents map[string]*models.Event

	friendRequests map[int]*models.FriendRequest

	mu              sync.Mutex
	addedMembers    [][3]int // eventID, userID, addedBy
	deletedInvites  []int
	closedEvents    []int
	friendships     [][2]int
	deletedRequests []int
	listLimit       int
	listBefore      time.Time

	flashbackCount    int
	flaggedFlashbacks []int

	createInviteErr  error
	createRequestErr error
}

func newStubDB() *stubDB {
	return &stubDB{
		users:          make(map[string]*models.User),
		invites:        make(map[int]*models.EventInvite),
		members:        make(map[int][]*models.EventMember),
		codeEvents:     make(map[string]*models.Event),
		friendRequests: make(map[int]*models.FriendRequest),
	}
}

func (s *stubDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user, nil
}

func (s *stubDB) CreateInvite(ctx context.Context, eventID, userID, invitedBy int) (*models.EventInvite, error) {
	if s.createInviteErr != nil {
		return nil, s.createInviteErr
	}
	return &models.EventInvite{
		ID:        1,
		EventID:   eventID,
		UserID:    userID,
		Status:    models.InvitePending,
		Event:     &models.MiniEvent{ID: eventID},
		InvitedBy: &models.MiniUser{ID: invitedBy},
	}, nil
}

func (s *stubDB) GetInviteByID(ctx context.Context, id int) (*models.EventInvite, error) {
	invite, ok := s.invites[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return invite, nil
}

func (s *stubDB) DeleteInvite(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedInvites = append(s.deletedInvites, id)
	delete(s.invites, id)
	return nil
}

func (s *stubDB) AddMember(ctx context.Context, eventID, userID int, role models.EventMemberRole, addedBy int) (bool, error) {
	for _, member := range s.members[eventID] {
		if member.User.ID == userID {
			return false, nil
		}
	}
	s.members[eventID] = append(s.members[eventID], &models.EventMember{
		User: &models.MiniUser{ID: userID},
		Role: role,
	})
	s.mu.Lock()
	s.addedMembers = append(s.addedMembers, [3]int{eventID, userID, addedBy})
	s.mu.Unlock()
	return true, nil
}

func (s *stubDB) IsMember(ctx context.Context, eventID, userID int) (bool, error) {
	for _, member := range s.members[eventID] {
		if member.User.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubDB) ListMembers(ctx context.Context, eventID int) ([]*models.EventMember, error) {
	return s.members[eventID], nil
}

func (s *stubDB) CloseEvent(ctx context.Context, eventID int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closedEvents = append(s.closedEvents, eventID)
	return nil
}

func (s *stubDB) GetEventByInviteCode(ctx context.Context, code string) (*models.Event, error) {
	event, ok := s.codeEvents[code]
	if !ok {
		return nil, database.ErrNotFound
	}
	return event, nil
}

func (s *stubDB) ListEventMessages(ctx context.Context, eventID, limit int, before time.Time) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listLimit = limit
	s.listBefore = before
	return []*models.Message{}, nil
}

func (s *stubDB) CreateFriendRequest(ctx context.Context, fromID, toID int) (*models.FriendRequest, error) {
	if s.createRequestErr != nil {
		return nil, s.createRequestErr
	}
	return &models.FriendRequest{
		ID:       1,
		Status:   models.FriendRequestPending,
		FromUser: &models.MiniUser{ID: fromID},
		ToUser:   &models.MiniUser{ID: toID},
	}, nil
}

func (s *stubDB) GetFriendRequestByID(ctx context.Context, id int) (*models.FriendRequest, error) {
	request, ok := s.friendRequests[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return request, nil
}

func (s *stubDB) ListFriendRequests(ctx context.Context, toUserID int) ([]*models.FriendRequest, error) {
	var requests []*models.FriendRequest
	for _, request := range s.friendRequests {
		if request.ToUser.ID == toUserID {
			requests = append(requests, request)
		}
	}
	return requests, nil
}

func (s *stubDB) ListUserInvites(ctx context.Context, userID int) ([]*models.EventInvite, error) {
	var invites []*models.EventInvite
	for _, invite := range s.invites {
		if invite.UserID == userID {
			invites = append(invites, invite)
		}
	}
	return invites, nil
}

func (s *stubDB) DeleteFriendRequest(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedRequests = append(s.deletedRequests, id)
	return nil
}

func (s *stubDB) CreateFriendship(ctx context.Context, fromID, toID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendships = append(s.friendships, [2]int{fromID, toID})
	return nil
}

// recorder captures frames published to a registry group.
type recorder struct {
	key string

	mu     sync.Mutex
	frames [][]byte
}

func (r *recorder) Key() string { return r.key }

func (r *recorder) Deliver(frame []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
	return true
}

func (r *recorder) received() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.frames))
	copy(out, r.frames)
	return out
}

func listenOn(t *testing.T, reg registry.Registry, group string) *recorder {
	t.Helper()
	r := &recorder{key: "recorder-" + group}
	require.NoError(t, reg.Subscribe(group, r))
	return r
}

func newEventService(db database.Database, reg registry.Registry) *EventService {
	return NewEventService(db, realtime.NewNotifier(reg))
}

func TestRespondInviteAcceptPublishesJoinDirective(t *testing.T) {
	db := newStubDB()
	db.invites[1] = &models.EventInvite{
		ID:        1,
		EventID:   9,
		UserID:    3,
		Event:     &models.MiniEvent{ID: 9},
		InvitedBy: &models.MiniUser{ID: 5},
	}
	reg := registry.NewMemory()
	sessions := listenOn(t, reg, "user_3")
	svc := newEventService(db, reg)

	require.NoError(t, svc.RespondInvite(context.Background(), 1, 3, models.InviteAccept))

	assert.Equal(t, [][3]int{{9, 3, 5}}, db.addedMembers)
	assert.Equal(t, []int{1}, db.deletedInvites)

	frames := sessions.received()
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"type":"add_to_group","data":{"event_id":9}}`, string(frames[0]))
}

func TestRespondInviteAcceptExistingMember(t *testing.T) {
	db := newStubDB()
	db.invites[1] = &models.EventInvite{
		ID:        1,
		EventID:   9,
		UserID:    3,
		Event:     &models.MiniEvent{ID: 9},
		InvitedBy: &models.MiniUser{ID: 5},
	}
	db.members[9] = []*models.EventMember{{User: &models.MiniUser{ID: 3}, Role: models.RoleGuest}}
	reg := registry.NewMemory()
	sessions := listenOn(t, reg, "user_3")
	svc := newEventService(db, reg)

	// Already a member: no directive, but the invite is still consumed.
	require.NoError(t, svc.RespondInvite(context.Background(), 1, 3, models.InviteAccept))

	assert.Empty(t, sessions.received())
	assert.Equal(t, []int{1}, db.deletedInvites)
}

func TestRespondInviteDecline(t *testing.T) {
	db := newStubDB()
	db.invites[1] = &models.EventInvite{
		ID:        1,
		EventID:   9,
		UserID:    3,
		Event:     &models.MiniEvent{ID: 9},
		InvitedBy: &models.MiniUser{ID: 5},
	}
	reg := registry.NewMemory()
	sessions := listenOn(t, reg, "user_3")
	svc := newEventService(db, reg)

	require.NoError(t, svc.RespondInvite(context.Background(), 1, 3, models.InviteDecline))

	assert.Empty(t, db.addedMembers)
	assert.Empty(t, sessions.received())
	assert.Equal(t, []int{1}, db.deletedInvites)
}

func TestRespondInviteWrongUser(t *testing.T) {
	db := newStubDB()
	db.invites[1] = &models.EventInvite{ID: 1, EventID: 9, UserID: 3, InvitedBy: &models.MiniUser{ID: 5}}
	svc := newEventService(db, registry.NewMemory())

	err := svc.RespondInvite(context.Background(), 1, 4, models.InviteAccept)
	require.Error(t, err)
	assert.Empty(t, db.addedMembers)
	assert.Empty(t, db.deletedInvites)
}

func TestInviteUserSendsNotification(t *testing.T) {
	db := newStubDB()
	db.users["bob"] = &models.User{ID: 8, Username: "bob"}
	db.members[9] = []*models.EventMember{{User: &models.MiniUser{ID: 3}, Role: models.RoleHost}}
	reg := registry.NewMemory()
	target := listenOn(t, reg, "user_8")
	svc := newEventService(db, reg)

	invite, err := svc.InviteUser(context.Background(), 9, 3, "bob")
	require.NoError(t, err)
	assert.Equal(t, 8, invite.UserID)

	frames := target.received()
	require.Len(t, frames, 1)

	var outer struct {
		Type string `json:"type"`
		Data struct {
			Type int `json:"type"`
			Data struct {
				Type models.NotificationType `json:"type"`
			} `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frames[0], &outer))
	assert.Equal(t, "chat_message", outer.Type)
	assert.Equal(t, realtime.ResponseNotification, outer.Data.Type)
	assert.Equal(t, models.NotificationEventInvitation, outer.Data.Data.Type)
}

func TestInviteUserDuplicate(t *testing.T) {
	db := newStubDB()
	db.users["bob"] = &models.User{ID: 8, Username: "bob"}
	db.members[9] = []*models.EventMember{{User: &models.MiniUser{ID: 3}, Role: models.RoleHost}}
	db.createInviteErr = database.ErrDuplicate
	svc := newEventService(db, registry.NewMemory())

	_, err := svc.InviteUser(context.Background(), 9, 3, "bob")
	assert.EqualError(t, err, "user already invited")
}

func TestInviteUserSelf(t *testing.T) {
	db := newStubDB()
	db.users["ada"] = &models.User{ID: 3, Username: "ada"}
	db.members[9] = []*models.EventMember{{User: &models.MiniUser{ID: 3}, Role: models.RoleHost}}
	svc := newEventService(db, registry.NewMemory())

	_, err := svc.InviteUser(context.Background(), 9, 3, "ada")
	assert.EqualError(t, err, "cannot invite yourself")
}

func TestInviteUserRequiresMembership(t *testing.T) {
	db := newStubDB()
	db.users["bob"] = &models.User{ID: 8, Username: "bob"}
	svc := newEventService(db, registry.NewMemory())

	_, err := svc.InviteUser(context.Background(), 9, 3, "bob")
	require.Error(t, err)
}

func TestJoinByCode(t *testing.T) {
	db := newStubDB()
	db.codeEvents["ab12cd34"] = &models.Event{ID: 9, Title: "picnic"}
	db.members[9] = []*models.EventMember{{User: &models.MiniUser{ID: 5}, Role: models.RoleHost}}
	reg := registry.NewMemory()
	sessions := listenOn(t, reg, "user_3")
	svc := newEventService(db, reg)

	event, err := svc.JoinByCode(context.Background(), "ab12cd34", 3)
	require.NoError(t, err)
	assert.Equal(t, 9, event.ID)
	assert.Equal(t, [][3]int{{9, 3, 5}}, db.addedMembers)

	frames := sessions.received()
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"type":"add_to_group","data":{"event_id":9}}`, string(frames[0]))
}

func TestJoinByCodeUnknown(t *testing.T) {
	svc := newEventService(newStubDB(), registry.NewMemory())

	_, err := svc.JoinByCode(context.Background(), "nope", 3)
	assert.EqualError(t, err, "invalid invite code")
}

func TestCloseEventHostOnly(t *testing.T) {
	db := newStubDB()
	db.members[9] = []*models.EventMember{
		{User: &models.MiniUser{ID: 5}, Role: models.RoleHost},
		{User: &models.MiniUser{ID: 3}, Role: models.RoleGuest},
	}
	svc := newEventService(db, registry.NewMemory())

	require.Error(t, svc.CloseEvent(context.Background(), 9, 3))
	assert.Empty(t, db.closedEvents)

	require.NoError(t, svc.CloseEvent(context.Background(), 9, 5))
	assert.Equal(t, []int{9}, db.closedEvents)
}

func TestListMessagesDefaults(t *testing.T) {
	db := newStubDB()
	db.members[9] = []*models.EventMember{{User: &models.MiniUser{ID: 3}, Role: models.RoleHost}}
	svc := newEventService(db, registry.NewMemory())

	_, err := svc.ListMessages(context.Background(), 9, 3, 0, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 30, db.listLimit)
	assert.WithinDuration(t, time.Now(), db.listBefore, time.Second)

	_, err = svc.ListMessages(context.Background(), 9, 3, 500, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 30, db.listLimit)

	cursor := time.Now().Add(-time.Hour)
	_, err = svc.ListMessages(context.Background(), 9, 3, 50, cursor)
	require.NoError(t, err)
	assert.Equal(t, 50, db.listLimit)
	assert.Equal(t, cursor, db.listBefore)
}
