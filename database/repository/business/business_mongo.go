package businessRepo

import (
	"context"
	"fmt"
	"time"

	"dispatchly/database"
	"dispatchly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBusinessRepo implements BusinessRepository using MongoDB.
type MongoBusinessRepo struct {
	coll *mongo.Collection
}

// NewMongoBusinessRepo constructs a new instance of MongoBusinessRepo.
func NewMongoBusinessRepo() BusinessRepository {
	db := database.MongoClient.Database("dispatchly")
	return &MongoBusinessRepo{coll: db.Collection("businesses")}
}

// Get retrieves a tenant configuration row by ID.
func (repo *MongoBusinessRepo) Get(ctx context.Context, businessID string) (*models.Business, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var business models.Business
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": businessID}).Decode(&business)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching business %s: %w", businessID, err)
	}
	return &business, nil
}
