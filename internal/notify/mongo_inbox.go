package notify

import (
	"context"
	"fmt"

	"hidaya/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const notificationsCollection = "notifications"

type MongoInbox struct {
	col *mongo.Collection
}

var _ Inbox = (*MongoInbox)(nil)

func NewMongoInbox(db *mongo.Database) *MongoInbox {
	return &MongoInbox{col: db.Collection(notificationsCollection)}
}

func (m *MongoInbox) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("user_created_at"),
	})
	if err != nil {
		return fmt.Errorf("error creating notification indexes: %w", err)
	}
	return nil
}

func (m *MongoInbox) Save(ctx context.Context, notification *models.Notification) error {
	if _, err := m.col.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("error saving notification: %w", err)
	}
	return nil
}
