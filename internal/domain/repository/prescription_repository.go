package repository

import (
	"context"

	"clinic-service/internal/domain/entity"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *entity.Prescription) (string, error)
	FindByID(ctx context.Context, id string) (*entity.Prescription, error)
	FindByAppointmentID(ctx context.Context, appointmentID uint) ([]entity.Prescription, error)
	FindByPatientID(ctx context.Context, patientID uint) ([]entity.Prescription, error)
}
