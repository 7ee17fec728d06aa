package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"groupchat/internal/auth"
	"groupchat/internal/models"
	"groupchat/internal/repository"
)

const testSecret = "test-secret"

// testPasswordHash is a bcrypt hash of "password", computed once —
// hashing per seeded user would dominate the test runtime.
var testPasswordHash = func() string {
	h, err := auth.HashPassword("password")
	if err != nil {
		panic(err)
	}
	return h
}()

// fakeData is the in-memory backing store shared by the fake
// repositories. Handler tests exercise the full router against it, so
// the only thing not covered is the SQL itself.
type fakeData struct {
	users    map[uuid.UUID]*models.User
	groups   map[uuid.UUID]*models.Group
	members  map[uuid.UUID][]uuid.UUID
	messages map[int64]*models.Message
	likes    map[int64]*models.Like

	nextMessageID int64
	nextLikeID    int64
	clock         time.Time
}

func newFakeData() *fakeData {
	return &fakeData{
		users:    make(map[uuid.UUID]*models.User),
		groups:   make(map[uuid.UUID]*models.Group),
		members:  make(map[uuid.UUID][]uuid.UUID),
		messages: make(map[int64]*models.Message),
		likes:    make(map[int64]*models.Like),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so list ordering is
// deterministic without sleeping.
func (d *fakeData) tick() time.Time {
	d.clock = d.clock.Add(time.Second)
	return d.clock
}

func (d *fakeData) addUser(username string, isActive, isAdmin bool) *models.User {
	now := d.tick()
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: testPasswordHash,
		IsActive:     isActive,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.users[u.ID] = u
	return u
}

func (d *fakeData) addGroup(name string) *models.Group {
	g := &models.Group{ID: uuid.New(), Name: name}
	d.groups[g.ID] = g
	return g
}

func (d *fakeData) addMembership(groupID, userID uuid.UUID) {
	d.members[groupID] = append(d.members[groupID], userID)
}

// addMessage seeds a message directly, bypassing the membership check
// the API applies on post.
func (d *fakeData) addMessage(groupID, userID uuid.UUID, text string) *models.Message {
	d.nextMessageID++
	m := &models.Message{
		ID:        d.nextMessageID,
		Text:      text,
		UserID:    userID,
		GroupID:   groupID,
		Timestamp: d.tick(),
		Likes:     make([]models.Like, 0),
	}
	d.messages[m.ID] = m
	return m
}

func (d *fakeData) addLike(userID uuid.UUID, messageID int64) *models.Like {
	d.nextLikeID++
	l := &models.Like{ID: d.nextLikeID, UserID: userID, MessageID: messageID}
	d.likes[l.ID] = l
	return l
}

func (d *fakeData) likesFor(messageID int64) []models.Like {
	likes := make([]models.Like, 0)
	ids := make([]int64, 0)
	for id := range d.likes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if d.likes[id].MessageID == messageID {
			likes = append(likes, *d.likes[id])
		}
	}
	return likes
}

func (d *fakeData) messageCopy(m *models.Message) *models.Message {
	cp := *m
	cp.Likes = d.likesFor(m.ID)
	return &cp
}

// --- fake repositories ---

type fakeUserRepo struct{ d *fakeData }

func (r *fakeUserRepo) Create(_ context.Context, username, passwordHash string, isActive, isAdmin bool) (*models.User, error) {
	for _, u := range r.d.users {
		if u.Username == username {
			return nil, repository.ErrDuplicate
		}
	}
	now := r.d.tick()
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		IsActive:     isActive,
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.d.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.d.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.d.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(r.d.users))
	for _, u := range r.d.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) (*models.User, error) {
	stored, ok := r.d.users[user.ID]
	if !ok {
		return nil, nil
	}
	for _, other := range r.d.users {
		if other.ID != user.ID && other.Username == user.Username {
			return nil, repository.ErrDuplicate
		}
	}
	stored.Username = user.Username
	stored.PasswordHash = user.PasswordHash
	stored.IsActive = user.IsActive
	stored.IsAdmin = user.IsAdmin
	stored.UpdatedAt = r.d.tick()
	cp := *stored
	return &cp, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.d.users[id]; !ok {
		return false, nil
	}
	delete(r.d.users, id)
	// Schema cascades: memberships, messages and likes go with the
	// user.
	for gid, ids := range r.d.members {
		kept := ids[:0]
		for _, uid := range ids {
			if uid != id {
				kept = append(kept, uid)
			}
		}
		r.d.members[gid] = kept
	}
	for mid, m := range r.d.messages {
		if m.UserID == id {
			delete(r.d.messages, mid)
			for lid, l := range r.d.likes {
				if l.MessageID == mid {
					delete(r.d.likes, lid)
				}
			}
		}
	}
	for lid, l := range r.d.likes {
		if l.UserID == id {
			delete(r.d.likes, lid)
		}
	}
	return true, nil
}

type fakeGroupRepo struct{ d *fakeData }

func (r *fakeGroupRepo) Create(_ context.Context, name string) (*models.Group, error) {
	for _, g := range r.d.groups {
		if g.Name == name {
			return nil, repository.ErrDuplicate
		}
	}
	g := r.d.addGroup(name)
	cp := *g
	return &cp, nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Group, error) {
	g, ok := r.d.groups[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGroupRepo) List(_ context.Context) ([]models.Group, error) {
	groups := make([]models.Group, 0, len(r.d.groups))
	for _, g := range r.d.groups {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (r *fakeGroupRepo) SearchByName(_ context.Context, name string) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	for _, g := range r.d.groups {
		if containsFold(g.Name, name) {
			groups = append(groups, *g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (r *fakeGroupRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := r.d.groups[id]; !ok {
		return false, nil
	}
	delete(r.d.groups, id)
	delete(r.d.members, id)
	for mid, m := range r.d.messages {
		if m.GroupID == id {
			delete(r.d.messages, mid)
			for lid, l := range r.d.likes {
				if l.MessageID == mid {
					delete(r.d.likes, lid)
				}
			}
		}
	}
	return true, nil
}

type fakeMembershipRepo struct{ d *fakeData }

func (r *fakeMembershipRepo) AddMember(_ context.Context, groupID, userID uuid.UUID) error {
	for _, uid := range r.d.members[groupID] {
		if uid == userID {
			return repository.ErrDuplicate
		}
	}
	r.d.addMembership(groupID, userID)
	return nil
}

func (r *fakeMembershipRepo) RemoveMember(_ context.Context, groupID, userID uuid.UUID) (bool, error) {
	ids := r.d.members[groupID]
	for i, uid := range ids {
		if uid == userID {
			r.d.members[groupID] = append(ids[:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMembershipRepo) ListMembers(_ context.Context, groupID uuid.UUID) ([]models.User, error) {
	members := make([]models.User, 0)
	for _, uid := range r.d.members[groupID] {
		if u, ok := r.d.users[uid]; ok {
			members = append(members, *u)
		}
	}
	return members, nil
}

type fakeMessageRepo struct{ d *fakeData }

func (r *fakeMessageRepo) Create(_ context.Context, groupID, userID uuid.UUID, text string) (*models.Message, error) {
	m := r.d.addMessage(groupID, userID, text)
	return r.d.messageCopy(m), nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, groupID uuid.UUID, messageID int64) (*models.Message, error) {
	m, ok := r.d.messages[messageID]
	if !ok || m.GroupID != groupID {
		return nil, nil
	}
	return r.d.messageCopy(m), nil
}

func (r *fakeMessageRepo) sorted(groupID uuid.UUID, match func(*models.Message) bool) []models.Message {
	messages := make([]models.Message, 0)
	for _, m := range r.d.messages {
		if m.GroupID == groupID && match(m) {
			messages = append(messages, *r.d.messageCopy(m))
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].Timestamp.After(messages[j].Timestamp)
		}
		return messages[i].ID > messages[j].ID
	})
	return messages
}

func (r *fakeMessageRepo) ListByGroup(_ context.Context, groupID uuid.UUID) ([]models.Message, error) {
	return r.sorted(groupID, func(*models.Message) bool { return true }), nil
}

func (r *fakeMessageRepo) SearchByText(_ context.Context, groupID uuid.UUID, query string) ([]models.Message, error) {
	return r.sorted(groupID, func(m *models.Message) bool {
		return containsFold(m.Text, query)
	}), nil
}

func (r *fakeMessageRepo) UpdateText(_ context.Context, messageID int64, text string) (*models.Message, error) {
	m, ok := r.d.messages[messageID]
	if !ok {
		return nil, nil
	}
	m.Text = text
	return r.d.messageCopy(m), nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, messageID int64) error {
	delete(r.d.messages, messageID)
	for lid, l := range r.d.likes {
		if l.MessageID == messageID {
			delete(r.d.likes, lid)
		}
	}
	return nil
}

type fakeLikeRepo struct{ d *fakeData }

func (r *fakeLikeRepo) Create(_ context.Context, userID uuid.UUID, messageID int64) (*models.Like, error) {
	for _, l := range r.d.likes {
		if l.UserID == userID && l.MessageID == messageID {
			return nil, repository.ErrDuplicate
		}
	}
	r.d.nextLikeID++
	l := &models.Like{ID: r.d.nextLikeID, UserID: userID, MessageID: messageID}
	r.d.likes[l.ID] = l
	cp := *l
	return &cp, nil
}

func (r *fakeLikeRepo) GetByUserAndMessage(_ context.Context, userID uuid.UUID, messageID int64) (*models.Like, error) {
	for _, l := range r.d.likes {
		if l.UserID == userID && l.MessageID == messageID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeLikeRepo) Delete(_ context.Context, userID uuid.UUID, messageID int64) (bool, error) {
	for lid, l := range r.d.likes {
		if l.UserID == userID && l.MessageID == messageID {
			delete(r.d.likes, lid)
			return true, nil
		}
	}
	return false, nil
}

func containsFold(s, substr string) bool {
	return bytes.Contains(bytes.ToLower([]byte(s)), bytes.ToLower([]byte(substr)))
}

// --- server and request helpers ---

func newTestServer(t *testing.T) (*gin.Engine, *fakeData) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	data := newFakeData()
	logger := zap.NewNop()

	userRepo := &fakeUserRepo{d: data}
	groupRepo := &fakeGroupRepo{d: data}
	membershipRepo := &fakeMembershipRepo{d: data}
	messageRepo := &fakeMessageRepo{d: data}
	likeRepo := &fakeLikeRepo{d: data}

	handlers := Handlers{
		Auth:       NewAuthHandler(userRepo, testSecret, time.Hour, logger),
		User:       NewUserHandler(userRepo, logger),
		Group:      NewGroupHandler(groupRepo, membershipRepo, logger),
		Membership: NewMembershipHandler(groupRepo, userRepo, membershipRepo, logger),
		Message:    NewMessageHandler(groupRepo, membershipRepo, messageRepo, logger),
		Like:       NewLikeHandler(groupRepo, messageRepo, likeRepo, logger),
	}

	r := gin.New()
	RegisterRoutes(r, handlers, testSecret, userRepo, logger)
	return r, data
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(user, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	wantStatus(t, w, status)
	if got := decodeBody(t, w)["error"]; got != msg {
		t.Fatalf("error = %q, want %q", got, msg)
	}
}

func groupPath(groupID uuid.UUID, rest string) string {
	return fmt.Sprintf("/groups/%s%s", groupID, rest)
}
