package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"dispatchly/database"
	"dispatchly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new instance of MongoAppointmentRepo.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database("dispatchly")
	return &MongoAppointmentRepo{coll: db.Collection("appointments")}
}

// ListForBusiness retrieves all appointments for a tenant, most recent first.
func (repo *MongoAppointmentRepo) ListForBusiness(ctx context.Context, businessID string) ([]models.Appointment, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := repo.coll.Find(ctxWithTimeout, bson.M{"business_id": businessID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments for business %s: %w", businessID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var appts []models.Appointment
	if err := cursor.All(ctxWithTimeout, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

// Get retrieves an appointment by its ID.
func (repo *MongoAppointmentRepo) Get(ctx context.Context, id string) (*models.Appointment, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&appt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching appointment %s: %w", id, err)
	}
	return &appt, nil
}

// Create inserts a new appointment document.
func (repo *MongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctxWithTimeout, appt); err != nil {
		return fmt.Errorf("error creating appointment: %w", err)
	}
	return nil
}

// Update applies the non-nil fields to an existing appointment document.
func (repo *MongoAppointmentRepo) Update(ctx context.Context, id string, fields models.AppointmentUpdate) (*models.Appointment, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{}
	if fields.StartTime != nil {
		set["start_time"] = *fields.StartTime
	}
	if fields.EndTime != nil {
		set["end_time"] = *fields.EndTime
	}
	if fields.Status != nil {
		set["status"] = *fields.Status
	}
	if fields.JobStage != nil {
		set["job_stage"] = *fields.JobStage
	}
	if len(set) == 0 {
		return repo.Get(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Appointment
	err := repo.coll.FindOneAndUpdate(ctxWithTimeout, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error updating appointment %s: %w", id, err)
	}
	return &updated, nil
}
