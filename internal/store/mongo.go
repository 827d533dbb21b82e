package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"infographic-service/internal/config"
	"infographic-service/internal/models"
)

// MongoTaskStore persists tasks as one document per task in a MongoDB
// collection. Reads and writes are wrapped in a bounded linear-backoff retry
// to tolerate transient connection errors.
type MongoTaskStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoTaskStore connects to MongoDB and prepares the task collection
func NewMongoTaskStore(cfg config.MongoDBConfig) (*MongoTaskStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Build connection URI from components if not provided directly
	uri := cfg.URI
	if uri == "" {
		if cfg.Username != "" && cfg.Password != "" {
			userInfo := url.UserPassword(cfg.Username, cfg.Password)
			uri = fmt.Sprintf("mongodb://%s@%s:%s/%s?authSource=%s",
				userInfo.String(),
				cfg.Host,
				cfg.Port,
				cfg.Database,
				url.QueryEscape(cfg.AuthSource),
			)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%s/%s", cfg.Host, cfg.Port, cfg.Database)
		}
	}

	// Mask credentials when logging the connection attempt
	logURI := uri
	if cfg.Password != "" && cfg.Username != "" {
		logURI = fmt.Sprintf("mongodb://%s:***@%s:%s/%s", cfg.Username, cfg.Host, cfg.Port, cfg.Database)
	}
	log.Printf("Connecting to MongoDB at %s", logURI)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", logURI, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", logURI, err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)

	// Index for the fingerprint fast path
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "fingerprint", Value: 1}, {Key: "status", Value: 1}},
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// Index might already exist, that's okay
		log.Printf("Note: MongoDB index creation: %v", err)
	}

	return &MongoTaskStore{
		client:     client,
		collection: collection,
	}, nil
}

// Create inserts a new task document
func (s *MongoTaskStore) Create(ctx context.Context, task *models.GenerationTask) error {
	return withLinearRetry(func() error {
		opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if _, err := s.collection.InsertOne(opCtx, task); err != nil {
			return fmt.Errorf("failed to insert task %s: %w", task.ID, err)
		}
		return nil
	})
}

// Get retrieves a task document by id
func (s *MongoTaskStore) Get(ctx context.Context, taskID string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	err := withLinearRetry(func() error {
		opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err := s.collection.FindOne(opCtx, bson.M{"_id": taskID}).Decode(&task)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query task %s: %w", taskID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial update to an existing task document
func (s *MongoTaskStore) Update(ctx context.Context, taskID string, update UpdateTask) error {
	set := bson.M{"updatedAt": time.Now()}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Progress != nil {
		set["progress"] = *update.Progress
	}
	if update.Result != nil {
		set["result"] = *update.Result
	}
	if update.Error != nil {
		set["error"] = *update.Error
	}

	return withLinearRetry(func() error {
		opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		result, err := s.collection.UpdateOne(opCtx, bson.M{"_id": taskID}, bson.M{"$set": set})
		if err != nil {
			return fmt.Errorf("failed to update task %s: %w", taskID, err)
		}
		if result.MatchedCount == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// FindCompletedByFingerprint returns the most recent completed task for the
// given submission fingerprint
func (s *MongoTaskStore) FindCompletedByFingerprint(ctx context.Context, fingerprint string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	err := withLinearRetry(func() error {
		opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		filter := bson.M{"fingerprint": fingerprint, "status": models.TaskStatusCompleted}
		opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		err := s.collection.FindOne(opCtx, filter, opts).Decode(&task)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query tasks by fingerprint: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Close disconnects the MongoDB client
func (s *MongoTaskStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
