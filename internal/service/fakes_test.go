package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/user/hanime/internal/model"
	"github.com/user/hanime/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type fakeProgressStore struct {
	mu   sync.Mutex
	rows map[string]*model.WatchProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{rows: make(map[string]*model.WatchProgress)}
}

func (f *fakeProgressStore) Find(_ context.Context, userID, key string) (*model.WatchProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.rows[userID+"|"+key]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProgressStore) ListByUser(_ context.Context, userID string) ([]*model.WatchProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.WatchProgress
	for _, p := range f.rows {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeProgressStore) Upsert(_ context.Context, p *model.WatchProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	cp.UpdatedAt = time.Now()
	f.rows[p.UserID+"|"+p.ContentKey] = &cp
	return nil
}

func (f *fakeProgressStore) Delete(_ context.Context, userID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, userID+"|"+key)
	return nil
}

type fakeWatchlistStore struct {
	mu      sync.Mutex
	entries map[string]*model.WatchlistEntry
	seq     int
}

func newFakeWatchlistStore() *fakeWatchlistStore {
	return &fakeWatchlistStore{entries: make(map[string]*model.WatchlistEntry)}
}

func (f *fakeWatchlistStore) List(_ context.Context, userID, status string, limit, offset int) ([]*model.WatchlistEntry, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*model.WatchlistEntry
	for _, e := range f.entries {
		if e.UserID == userID && (status == "" || e.Status == status) {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeWatchlistStore) Find(_ context.Context, userID, contentID string) (*model.WatchlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[userID+"|"+contentID], nil
}

func (f *fakeWatchlistStore) Upsert(_ context.Context, e *model.WatchlistEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	cp := *e
	cp.ID = uint(f.seq)
	f.entries[e.UserID+"|"+e.ContentID] = &cp
	return nil
}

func (f *fakeWatchlistStore) Delete(_ context.Context, userID, contentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, userID+"|"+contentID)
	return nil
}

type fakeCommentStore struct {
	mu            sync.Mutex
	comments      map[string]*model.Comment
	notifications []*model.Notification
	failReply     bool
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]*model.Comment)}
}

func cloneComment(c *model.Comment) *model.Comment {
	cp := *c
	cp.Likes = append(pq.StringArray{}, c.Likes...)
	cp.Dislikes = append(pq.StringArray{}, c.Dislikes...)
	cp.Replies = append(pq.StringArray{}, c.Replies...)
	return &cp
}

func (f *fakeCommentStore) Create(_ context.Context, c *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[c.ID] = cloneComment(c)
	return nil
}

func (f *fakeCommentStore) FindByID(_ context.Context, id string) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.comments[id]; ok {
		return cloneComment(c), nil
	}
	return nil, nil
}

func (f *fakeCommentStore) ListRoots(_ context.Context, contentID string, limit, offset int) ([]*model.Comment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var roots []*model.Comment
	for _, c := range f.comments {
		if c.ContentID == contentID && c.ParentID == nil {
			roots = append(roots, cloneComment(c))
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].CreatedAt.After(roots[j].CreatedAt) })
	total := int64(len(roots))
	if offset >= len(roots) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(roots) {
		end = len(roots)
	}
	return roots[offset:end], total, nil
}

func (f *fakeCommentStore) ListByRoots(_ context.Context, rootIDs []string) ([]*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[string]bool, len(rootIDs))
	for _, id := range rootIDs {
		want[id] = true
	}
	var out []*model.Comment
	for _, c := range f.comments {
		if c.RootCommentID != nil && want[*c.RootCommentID] {
			out = append(out, cloneComment(c))
		}
	}
	return out, nil
}

func (f *fakeCommentStore) CreateReply(_ context.Context, reply *model.Comment, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReply {
		return repository.ErrNotFound
	}
	parent, ok := f.comments[*reply.ParentID]
	if !ok {
		return repository.ErrNotFound
	}
	f.comments[reply.ID] = cloneComment(reply)
	parent.PrependReply(reply.ID)
	if n != nil {
		f.notifications = append(f.notifications, n)
	}
	return nil
}

func (f *fakeCommentStore) UpdateReaction(_ context.Context, id string, mutate func(c *model.Comment) *model.Notification) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	work := cloneComment(c)
	n := mutate(work)
	f.comments[id] = cloneComment(work)
	if n != nil {
		f.notifications = append(f.notifications, n)
	}
	return work, nil
}

func (f *fakeCommentStore) notificationsFor(recipient string) []*model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipient {
			out = append(out, n)
		}
	}
	return out
}

type fakeCounterStore struct {
	mu     sync.Mutex
	views  map[string]int64
	shares map[string]*model.ShareCounter
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{views: make(map[string]int64), shares: make(map[string]*model.ShareCounter)}
}

func (f *fakeCounterStore) IncrementView(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[key]++
	return f.views[key], nil
}

func (f *fakeCounterStore) GetViews(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.views[key], nil
}

func (f *fakeCounterStore) IncrementShare(_ context.Context, pageID, platform string) (*model.ShareCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.shares[pageID]
	if !ok {
		c = &model.ShareCounter{PageID: pageID, Shares: map[string]interface{}{}}
		f.shares[pageID] = c
	}
	n, _ := c.Shares[platform].(float64)
	c.Shares[platform] = n + 1
	c.TotalShares++
	cp := *c
	return &cp, nil
}

func (f *fakeCounterStore) GetShares(_ context.Context, pageID string) (*model.ShareCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.shares[pageID]; ok {
		cp := *c
		return &cp, nil
	}
	return &model.ShareCounter{PageID: pageID}, nil
}

type fakeCreatorStore struct {
	mu      sync.Mutex
	setups  map[string]*model.CreatorSetup
	lookups int
}

func newFakeCreatorStore() *fakeCreatorStore {
	return &fakeCreatorStore{setups: make(map[string]*model.CreatorSetup)}
}

func (f *fakeCreatorStore) FindByUserID(_ context.Context, userID string) (*model.CreatorSetup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.setups[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCreatorStore) FindByUsername(_ context.Context, username string) (*model.CreatorSetup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	for _, s := range f.setups {
		if strings.EqualFold(s.Username, username) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCreatorStore) Upsert(_ context.Context, s *model.CreatorSetup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.setups[s.UserID] = &cp
	return nil
}

type fakeNotificationStore struct {
	mu   sync.Mutex
	rows []*model.Notification
}

func (f *fakeNotificationStore) ListByRecipient(_ context.Context, recipientID string, limit, offset int) ([]*model.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*model.Notification
	for _, n := range f.rows {
		if n.RecipientID == recipientID {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeNotificationStore) CountUnread(_ context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.RecipientID == recipientID && !r.Read {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationStore) FindByID(_ context.Context, id string) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id {
			r.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows {
		if r.RecipientID == recipientID && !r.Read {
			r.Read = true
			n++
		}
	}
	return n, nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, email, username, password string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; ok {
		return nil, repository.ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{Email: email, UserID: uuid.NewString(), Username: username, PasswordHash: string(hash), TimeOfJoining: time.Now()}
	f.users[email] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByResetToken(_ context.Context, hash string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetTokenHash != "" && u.ResetTokenHash == hash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByIDs(_ context.Context, ids []string) (map[string]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*model.User)
	for _, id := range ids {
		for _, u := range f.users {
			if u.ID() == id {
				out[id] = u
			}
		}
	}
	return out, nil
}

func (f *fakeUserStore) CheckPassword(u *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, email string, p repository.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Username != nil {
		for _, other := range f.users {
			if other.Email != email && other.Username == *p.Username {
				return repository.ErrUserExists
			}
		}
		u.Username = *p.Username
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.ResetTokenHash = ""
	u.ResetTokenExpiry = nil
	return nil
}

func (f *fakeUserStore) SetResetToken(_ context.Context, email, hash string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		u.ResetTokenHash = hash
		u.ResetTokenExpiry = &expiry
	}
	return nil
}

type sentMail struct {
	to, username, link string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendPasswordReset(to, username, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, username, link})
	return nil
}
