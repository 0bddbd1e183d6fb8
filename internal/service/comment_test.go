package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/user/hanime/internal/model"
)

func newTestCommentService(store CommentStore) *CommentService {
	svc := NewCommentService(store)
	var seq int
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc
}

var (
	alice = Author{ID: "u1", Name: "alice"}
	bob   = Author{ID: "u2", Name: "bob"}
	carol = Author{ID: "u3", Name: "carol"}
)

func TestPostReplyNotifiesParentAuthor(t *testing.T) {
	ctx := context.Background()
	store := newFakeCommentStore()
	svc := newTestCommentService(store)

	root, err := svc.PostComment(ctx, alice, "show-1", "nice")
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Likes) != 0 || len(root.Dislikes) != 0 || len(root.Replies) != 0 {
		t.Fatalf("new comment arrays should be empty: %+v", root)
	}
	if root.Likes == nil || root.Replies == nil {
		t.Fatal("arrays should serialise as [] not null")
	}

	reply, err := svc.PostReply(ctx, bob, root.ID, "same")
	if err != nil {
		t.Fatal(err)
	}

	ns := store.notificationsFor("u1")
	if len(ns) != 1 {
		t.Fatalf("expected 1 notification for u1, got %d", len(ns))
	}
	n := ns[0]
	if n.Type != model.NotificationReply || n.SenderID != "u2" || n.RecipientID != "u1" {
		t.Errorf("unexpected notification %+v", n)
	}
	if n.ReplyID == nil || *n.ReplyID != reply.ID {
		t.Errorf("notification replyId = %v, want %s", n.ReplyID, reply.ID)
	}

	parent, _ := store.FindByID(ctx, root.ID)
	if len(parent.Replies) == 0 || parent.Replies[0] != reply.ID {
		t.Errorf("parent replies = %v, want %s at index 0", parent.Replies, reply.ID)
	}
}

func TestReplyToReplyResolvesRoot(t *testing.T) {
	ctx := context.Background()
	store := newFakeCommentStore()
	svc := newTestCommentService(store)

	root, _ := svc.PostComment(ctx, alice, "show-1", "first")
	mid, err := svc.PostReply(ctx, bob, root.ID, "second")
	if err != nil {
		t.Fatal(err)
	}
	deep, err := svc.PostReply(ctx, carol, mid.ID, "third")
	if err != nil {
		t.Fatal(err)
	}

	if deep.RootCommentID == nil || *deep.RootCommentID != root.ID {
		t.Errorf("rootCommentId = %v, want %s", deep.RootCommentID, root.ID)
	}
	if deep.ParentID == nil || *deep.ParentID != mid.ID {
		t.Errorf("parentId = %v, want %s", deep.ParentID, mid.ID)
	}
	if ns := store.notificationsFor("u2"); len(ns) != 1 {
		t.Errorf("intermediate author should get 1 notification, got %d", len(ns))
	}
	// 根评论作者只收到第一条回复的通知
	if ns := store.notificationsFor("u1"); len(ns) != 1 {
		t.Errorf("root author notifications = %d, want 1", len(ns))
	}
}

func TestNoSelfNotification(t *testing.T) {
	ctx := context.Background()
	store := newFakeCommentStore()
	svc := newTestCommentService(store)

	root, _ := svc.PostComment(ctx, alice, "show-1", "hello")
	if _, err := svc.PostReply(ctx, alice, root.ID, "me again"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.React(ctx, root.ID, "u1", model.ReactionLike); err != nil {
		t.Fatal(err)
	}
	if ns := store.notificationsFor("u1"); len(ns) != 0 {
		t.Errorf("self actions must not notify, got %d", len(ns))
	}
}

func TestReplyToMissingParent(t *testing.T) {
	svc := newTestCommentService(newFakeCommentStore())
	_, err := svc.PostReply(context.Background(), bob, "nope", "hi")
	if KindOf(err) != KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestReactToggle(t *testing.T) {
	ctx := context.Background()
	store := newFakeCommentStore()
	svc := newTestCommentService(store)
	root, _ := svc.PostComment(ctx, alice, "show-1", "hello")

	c, err := svc.React(ctx, root.ID, "u2", model.ReactionLike)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Likes) != 1 {
		t.Fatalf("likes = %v after first like", c.Likes)
	}
	c, err = svc.React(ctx, root.ID, "u2", model.ReactionLike)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Likes) != 0 {
		t.Errorf("double like should return to original count, likes = %v", c.Likes)
	}
	// 取消点赞不产生通知
	if ns := store.notificationsFor("u1"); len(ns) != 1 || ns[0].Type != model.NotificationLike {
		t.Errorf("expected exactly one LIKE notification, got %+v", ns)
	}
}

func TestReactMutualExclusion(t *testing.T) {
	ctx := context.Background()
	store := newFakeCommentStore()
	svc := newTestCommentService(store)
	root, _ := svc.PostComment(ctx, alice, "show-1", "hello")

	if _, err := svc.React(ctx, root.ID, "u2", model.ReactionLike); err != nil {
		t.Fatal(err)
	}
	c, err := svc.React(ctx, root.ID, "u2", model.ReactionDislike)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Likes) != 0 || len(c.Dislikes) != 1 || c.Dislikes[0] != "u2" {
		t.Errorf("likes=%v dislikes=%v", c.Likes, c.Dislikes)
	}
}

func TestReactValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestCommentService(newFakeCommentStore())

	if _, err := svc.React(ctx, "x", "u2", "love"); KindOf(err) != KindValidation {
		t.Errorf("unknown action: %v", err)
	}
	if _, err := svc.React(ctx, "missing", "u2", model.ReactionLike); KindOf(err) != KindNotFound {
		t.Errorf("missing comment: %v", err)
	}
}

func TestPostCommentValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestCommentService(newFakeCommentStore())

	tests := []struct {
		name      string
		contentID string
		text      string
	}{
		{"empty text", "show-1", "   "},
		{"empty content", "", "hi"},
		{"too long", "show-1", strings.Repeat("あ", MaxCommentLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.PostComment(ctx, alice, tt.contentID, tt.text); KindOf(err) != KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestListAssemblesThreads(t *testing.T) {
	ctx := context.Background()
	svc := newTestCommentService(newFakeCommentStore())

	root, _ := svc.PostComment(ctx, alice, "show-1", "root")
	r1, _ := svc.PostReply(ctx, bob, root.ID, "r1")
	r2, _ := svc.PostReply(ctx, carol, root.ID, "r2")
	r1a, _ := svc.PostReply(ctx, alice, r1.ID, "r1a")
	if _, err := svc.PostComment(ctx, bob, "show-2", "elsewhere"); err != nil {
		t.Fatal(err)
	}

	page, err := svc.List(ctx, "show-1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || len(page.Comments) != 1 {
		t.Fatalf("expected 1 root, got %d", len(page.Comments))
	}

	var ids []string
	for _, c := range page.Comments[0].Thread {
		ids = append(ids, c.ID)
	}
	// replies 数组最新在前，深度优先展开
	want := []string{r2.ID, r1.ID, r1a.ID}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("thread order = %v, want %v", ids, want)
	}

	th, err := svc.Thread(ctx, r1a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if th.ID != root.ID || len(th.Thread) != 3 {
		t.Errorf("Thread(reply) should return whole thread, got root=%s len=%d", th.ID, len(th.Thread))
	}
}
