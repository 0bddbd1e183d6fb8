package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/user/hanime/internal/model"
	"gorm.io/gorm"
)

// testDB 连接 TEST_DATABASE_URL 指定的 Postgres，未设置时跳过
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL 未设置，跳过数据库测试")
	}
	db, err := InitDB(url)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestIncrementViewConcurrent(t *testing.T) {
	repo := NewCounterRepository(testDB(t))
	ctx := context.Background()
	key := "ep-" + uuid.NewString()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementView(ctx, key); err != nil {
				t.Errorf("IncrementView: %v", err)
			}
		}()
	}
	wg.Wait()

	views, err := repo.GetViews(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if views != n {
		t.Errorf("views = %d, want %d", views, n)
	}
}

func TestIncrementSharePerPlatform(t *testing.T) {
	repo := NewCounterRepository(testDB(t))
	ctx := context.Background()
	page := "page-" + uuid.NewString()

	for _, p := range []string{"twitter", "copy", "twitter"} {
		if _, err := repo.IncrementShare(ctx, page, p); err != nil {
			t.Fatalf("IncrementShare(%s): %v", p, err)
		}
	}

	s, err := repo.GetShares(ctx, page)
	if err != nil {
		t.Fatal(err)
	}
	counts := s.Counts()
	if counts["twitter"] != 2 || counts["copy"] != 1 {
		t.Errorf("shares = %v", counts)
	}
	if s.TotalShares != 3 {
		t.Errorf("total = %d, want 3", s.TotalShares)
	}
}

func newComment(contentID, userID string) *model.Comment {
	return &model.Comment{
		ID:        uuid.NewString(),
		ContentID: contentID,
		UserID:    userID,
		UserName:  userID,
		Text:      "hi",
		CreatedAt: time.Now(),
	}
}

func TestCreateReplyMissingParentRollsBack(t *testing.T) {
	db := testDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	missing := uuid.NewString()
	reply := newComment("c-"+uuid.NewString(), "u2")
	reply.ParentID, reply.RootCommentID = &missing, &missing
	n := &model.Notification{ID: uuid.NewString(), RecipientID: "u1", SenderID: "u2", Type: model.NotificationReply, CreatedAt: time.Now()}

	if err := repo.CreateReply(ctx, reply, n); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got, err := repo.FindByID(ctx, reply.ID); err != nil || got != nil {
		t.Errorf("orphan reply left behind: %+v %v", got, err)
	}
	var count int64
	db.Model(&model.Notification{}).Where("id = ?", n.ID).Count(&count)
	if count != 0 {
		t.Errorf("notification should be rolled back, found %d", count)
	}
}

func TestCreateReplyPrependsToParent(t *testing.T) {
	db := testDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	root := newComment("c-"+uuid.NewString(), "u1")
	if err := repo.Create(ctx, root); err != nil {
		t.Fatal(err)
	}
	var ids []string
	for i := 0; i < 2; i++ {
		r := newComment(root.ContentID, "u2")
		r.ParentID, r.RootCommentID = &root.ID, &root.ID
		n := &model.Notification{ID: uuid.NewString(), RecipientID: "u1", SenderID: "u2", Type: model.NotificationReply, CreatedAt: time.Now()}
		if err := repo.CreateReply(ctx, r, n); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, r.ID)
	}

	got, err := repo.FindByID(ctx, root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Replies) != 2 || got.Replies[0] != ids[1] || got.Replies[1] != ids[0] {
		t.Errorf("replies = %v, want newest first %v", got.Replies, ids)
	}
}

func TestUpdateReactionConcurrent(t *testing.T) {
	repo := NewCommentRepository(testDB(t))
	ctx := context.Background()

	c := newComment("c-"+uuid.NewString(), "author")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			_, err := repo.UpdateReaction(ctx, c.ID, func(c *model.Comment) *model.Notification {
				c.ApplyReaction(user, model.ReactionLike)
				return nil
			})
			if err != nil {
				t.Errorf("UpdateReaction: %v", err)
			}
		}(uuid.NewString())
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Likes) != n {
		t.Errorf("likes = %d, want %d", len(got.Likes), n)
	}

	if _, err := repo.UpdateReaction(ctx, uuid.NewString(), func(*model.Comment) *model.Notification { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing comment: err = %v", err)
	}
}

func TestProgressUpsertKeepsOneRow(t *testing.T) {
	repo := NewProgressRepository(testDB(t))
	ctx := context.Background()
	user := "u-" + uuid.NewString()

	first := &model.WatchProgress{UserID: user, ContentKey: "ep-1", CurrentTime: 10, Title: "Ep 1"}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	second := &model.WatchProgress{UserID: user, ContentKey: "ep-1", CurrentTime: 42, Title: "Ep 1"}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListByUser(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].CurrentTime != 42 {
		t.Fatalf("rows = %+v", list)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at = %v, want stored %v", second.CreatedAt, first.CreatedAt)
	}
}

func TestWatchlistUpsertReturnsStoredRow(t *testing.T) {
	repo := NewWatchlistRepository(testDB(t))
	ctx := context.Background()
	user := "u-" + uuid.NewString()

	first := &model.WatchlistEntry{UserID: user, ContentID: "show-1", Status: model.StatusWatching}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	second := &model.WatchlistEntry{UserID: user, ContentID: "show-1", Status: model.StatusCompleted}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatal(err)
	}

	if second.ID != first.ID {
		t.Errorf("id = %d, want %d", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at = %v, want stored %v", second.CreatedAt, first.CreatedAt)
	}

	list, total, err := repo.List(ctx, user, "", 12, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || list[0].Status != model.StatusCompleted {
		t.Errorf("total=%d rows=%+v", total, list)
	}
}
