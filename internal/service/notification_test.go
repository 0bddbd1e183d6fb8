package service

import (
	"context"
	"testing"
	"time"

	"github.com/user/hanime/internal/model"
)

func seedNotifications() (*fakeNotificationStore, *fakeUserStore) {
	now := time.Now()
	store := &fakeNotificationStore{rows: []*model.Notification{
		{ID: "n1", RecipientID: "u1", SenderID: "u2", Type: model.NotificationReply, CreatedAt: now.Add(-2 * time.Minute)},
		{ID: "n2", RecipientID: "u1", SenderID: "u3", Type: model.NotificationLike, CreatedAt: now.Add(-time.Minute)},
		{ID: "n3", RecipientID: "u2", SenderID: "u1", Type: model.NotificationLike, CreatedAt: now},
	}}
	users := newFakeUserStore()
	users.users["u2"] = &model.User{Email: "bob@x.io", UserID: "u2", Username: "bob", Avatar: "https://img.example/bob.png"}
	return store, users
}

func TestNotificationListJoinsSender(t *testing.T) {
	store, users := seedNotifications()
	svc := NewNotificationService(store, users)

	page, err := svc.List(context.Background(), "u1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || page.Unread != 2 {
		t.Fatalf("total=%d unread=%d", page.Total, page.Unread)
	}
	if page.Data[0].ID != "n2" {
		t.Errorf("newest first: got %s", page.Data[0].ID)
	}
	// u3 不在凭证库中，sender 为空
	if page.Data[0].Sender != nil {
		t.Errorf("unknown sender should be nil, got %+v", page.Data[0].Sender)
	}
	if s := page.Data[1].Sender; s == nil || s.Username != "bob" {
		t.Errorf("sender join failed: %+v", s)
	}
}

func TestMarkReadOwnerOnly(t *testing.T) {
	ctx := context.Background()
	store, users := seedNotifications()
	svc := NewNotificationService(store, users)

	if _, err := svc.MarkRead(ctx, "u2", "n1"); KindOf(err) != KindForbidden {
		t.Errorf("non-owner: %v", err)
	}
	if _, err := svc.MarkRead(ctx, "u1", "missing"); KindOf(err) != KindNotFound {
		t.Errorf("missing: %v", err)
	}
	n, err := svc.MarkRead(ctx, "u1", "n1")
	if err != nil {
		t.Fatal(err)
	}
	if !n.Read {
		t.Error("notification should be read")
	}

	count, err := svc.MarkAllRead(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("mark all read updated %d, want 1", count)
	}
}
