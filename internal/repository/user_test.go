package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
)

// testMongo 连接 TEST_MONGO_URI 下的临时库，结束时删除
func testMongo(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI 未设置，跳过凭证库测试")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, db, err := ConnectMongo(ctx, uri, "hanime_test_"+uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("ConnectMongo: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db.Drop(ctx)
		client.Disconnect(ctx)
	})
	return db
}

func TestUserCreateAssignsOpaqueID(t *testing.T) {
	repo := NewUserRepository(testMongo(t))
	ctx := context.Background()

	alice, err := repo.Create(ctx, "alice@x.io", "alice", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	bob, err := repo.Create(ctx, "bob@x.io", "bob", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if alice.ID() == "" || alice.ID() == alice.Email || alice.ID() == bob.ID() {
		t.Fatalf("ids = %q, %q", alice.ID(), bob.ID())
	}

	found, err := repo.FindByEmail(ctx, "alice@x.io")
	if err != nil || found == nil || found.ID() != alice.ID() {
		t.Fatalf("FindByEmail: %+v %v", found, err)
	}

	users, err := repo.FindByIDs(ctx, []string{alice.ID(), bob.ID(), "alice@x.io"})
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[alice.ID()].Username != "alice" {
		t.Errorf("FindByIDs = %v", users)
	}

	if _, err := repo.Create(ctx, "carol@x.io", "alice", "secret1"); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username: err = %v", err)
	}
}
