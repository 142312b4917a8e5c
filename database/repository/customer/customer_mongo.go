package customerRepo

import (
	"context"
	"fmt"
	"time"

	"dispatchly/database"
	"dispatchly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCustomerRepo implements CustomerRepository using MongoDB.
type MongoCustomerRepo struct {
	coll *mongo.Collection
}

// NewMongoCustomerRepo constructs a new instance of MongoCustomerRepo.
func NewMongoCustomerRepo() CustomerRepository {
	db := database.MongoClient.Database("dispatchly")
	return &MongoCustomerRepo{coll: db.Collection("customers")}
}

// GetByPhone retrieves a contact by phone within a tenant.
func (repo *MongoCustomerRepo) GetByPhone(ctx context.Context, phone, businessID string) (*models.Customer, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var customer models.Customer
	filter := bson.M{"phone": phone, "business_id": businessID}
	err := repo.coll.FindOne(ctxWithTimeout, filter).Decode(&customer)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching customer by phone: %w", err)
	}
	return &customer, nil
}

// GetByID retrieves a contact by its ID.
func (repo *MongoCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var customer models.Customer
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&customer)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching customer %s: %w", id, err)
	}
	return &customer, nil
}

// Upsert creates or refreshes a contact keyed by (businessID, phone).
func (repo *MongoCustomerRepo) Upsert(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	existing, err := repo.GetByPhone(ctx, customer.Phone, customer.BusinessID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if existing == nil {
		customer.ID = uuid.New().String()
		customer.CreatedAt = now
		customer.UpdatedAt = now
		if _, err := repo.coll.InsertOne(ctxWithTimeout, customer); err != nil {
			return nil, fmt.Errorf("error creating customer: %w", err)
		}
		return customer, nil
	}

	set := bson.M{"updated_at": now}
	if customer.Name != "" {
		set["name"] = customer.Name
	}
	if customer.Address != "" {
		set["address"] = customer.Address
	}
	filter := bson.M{"id": existing.ID}
	if _, err := repo.coll.UpdateOne(ctxWithTimeout, filter, bson.M{"$set": set}); err != nil {
		return nil, fmt.Errorf("error updating customer %s: %w", existing.ID, err)
	}
	if customer.Name != "" {
		existing.Name = customer.Name
	}
	if customer.Address != "" {
		existing.Address = customer.Address
	}
	existing.UpdatedAt = now
	return existing, nil
}
