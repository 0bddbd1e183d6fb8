package repository

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionUsers 凭证库用户集合
const CollectionUsers = "users"

// ConnectMongo 连接凭证库并建立索引
func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	if err := c.Ping(ctx, nil); err != nil {
		return nil, nil, errors.Wrap(err, "MongoDB ping failed")
	}

	db := c.Database(dbName)
	_, err = db.Collection(CollectionUsers).Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "resetTokenHash", Value: 1}},
				Options: options.Index().SetSparse(true),
			},
		},
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create users indexes")
	}

	return c, db, nil
}
