package repository

import (
	"context"
	"errors"
	"fmt"

	"clinic-service/internal/domain/entity"
	domainRepo "clinic-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const prescriptionCollection = "prescriptions"

type prescriptionRepository struct {
	collection *mongo.Collection
}

func NewPrescriptionRepository(client *mongo.Client, dbName string) domainRepo.PrescriptionRepository {
	return &prescriptionRepository{
		collection: client.Database(dbName).Collection(prescriptionCollection),
	}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *entity.Prescription) (string, error) {
	result, err := r.collection.InsertOne(ctx, prescription)
	if err != nil {
		return "", fmt.Errorf("insert prescription: %w", err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *prescriptionRepository) FindByID(ctx context.Context, id string) (*entity.Prescription, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot reference any document.
		return nil, nil
	}

	var prescription entity.Prescription
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&prescription)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find prescription: %w", err)
	}
	return &prescription, nil
}

func (r *prescriptionRepository) FindByAppointmentID(ctx context.Context, appointmentID uint) ([]entity.Prescription, error) {
	return r.findAll(ctx, bson.M{"appointment_id": appointmentID})
}

func (r *prescriptionRepository) FindByPatientID(ctx context.Context, patientID uint) ([]entity.Prescription, error) {
	return r.findAll(ctx, bson.M{"patient_id": patientID})
}

func (r *prescriptionRepository) findAll(ctx context.Context, filter bson.M) ([]entity.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "issued_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find prescriptions: %w", err)
	}

	var prescriptions []entity.Prescription
	if err := cursor.All(ctx, &prescriptions); err != nil {
		return nil, fmt.Errorf("decode prescriptions: %w", err)
	}
	return prescriptions, nil
}
