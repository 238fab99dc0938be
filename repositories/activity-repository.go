package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/models"
)

// ActivityRepository keeps the project activity feed in MongoDB.
type ActivityRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewActivityRepository(ctx context.Context, uri, dbName, collection string) (*ActivityRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		logging.Logger.Errorf("Event ID: MONGO_CONNECT_FAILED, Description: MongoDB connection failed: %v", err)
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		logging.Logger.Errorf("Event ID: MONGO_PING_FAILED, Description: MongoDB ping failed: %v", err)
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(dbName).Collection(collection)
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: MONGO_INDEX_FAILED, Description: Could not create activity index: %v", err)
	}

	logging.Logger.Infof("Event ID: MONGO_CONNECTED, Description: Activity log using %s/%s", dbName, collection)
	return &ActivityRepository{client: client, collection: coll}, nil
}

func (r *ActivityRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *ActivityRepository) Record(ctx context.Context, a models.ProjectActivity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, err := r.collection.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]models.ProjectActivity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.ProjectActivity{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}
	return out, nil
}
