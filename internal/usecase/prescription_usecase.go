package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-service/internal/converter"
	"clinic-service/internal/delivery/dto"
	"clinic-service/internal/domain/entity"
	"clinic-service/internal/domain/repository"
	"clinic-service/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPrescriptionNotFound     = errors.New("prescription not found")
	ErrPrescriptionNotOwned     = errors.New("prescription does not belong to you")
	ErrPrescriptionForCancelled = errors.New("cannot issue a prescription for a cancelled appointment")
	ErrNotAppointmentDoctor     = errors.New("appointment belongs to another doctor")
)

type PrescriptionUsecase interface {
	CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	GetPrescription(ctx context.Context, prescriptionID string) (*dto.PrescriptionResponse, error)
	GetByAppointment(ctx context.Context, appointmentID uint) (*dto.PrescriptionListResponse, error)
	GetByPatient(ctx context.Context, patientID uint) (*dto.PrescriptionListResponse, error)
}

type prescriptionUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	prescriptionRepo repository.PrescriptionRepository
	appointmentRepo  repository.AppointmentRepository
	patientRepo      repository.PatientRepository
	auditService     service.AuditService
}

func NewPrescriptionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	prescriptionRepo repository.PrescriptionRepository,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		db:               db,
		log:              log,
		prescriptionRepo: prescriptionRepo,
		appointmentRepo:  appointmentRepo,
		patientRepo:      patientRepo,
		auditService:     auditService,
	}
}

// CreatePrescription issues a prescription against a non-cancelled
// appointment. The document lives in MongoDB and references the
// appointment by ID only, so later appointment deletion leaves the
// prescription as a historical record.
func (u *prescriptionUsecase) CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", req.AppointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.IsCancelled() {
		return nil, ErrPrescriptionForCancelled
	}

	// A doctor may only prescribe for their own appointments
	actorRole, actorID := actorFromContext(ctx)
	if actorRole == entity.RoleDoctor && (actorID == nil || *actorID != appointment.DoctorID) {
		return nil, ErrNotAppointmentDoctor
	}

	prescription := &entity.Prescription{
		AppointmentID: appointment.ID,
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
		Content:       req.Content,
		IssuedAt:      time.Now().UTC(),
	}

	id, err := u.prescriptionRepo.Create(ctx, prescription)
	if err != nil {
		u.log.Warnf("Failed to create prescription: %+v", err)
		return nil, err
	}
	prescription.ID = id

	// Audit log - issue prescription (best effort, the document is
	// already stored)
	if err := u.auditService.LogCreate(ctx, u.db.WithContext(ctx), actorRole, actorID, entity.AuditActionPrescriptionCreate, "prescription", id, converter.PrescriptionToResponse(prescription)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Prescription issued: id=%s, appointment=%d, doctor=%d", id, appointment.ID, appointment.DoctorID)

	return converter.PrescriptionToResponse(prescription), nil
}

func (u *prescriptionUsecase) GetPrescription(ctx context.Context, prescriptionID string) (*dto.PrescriptionResponse, error) {
	prescription, err := u.prescriptionRepo.FindByID(ctx, prescriptionID)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", prescriptionID, err)
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}

	// Doctors and patients read their own prescriptions only
	actorRole, actorID := actorFromContext(ctx)
	switch actorRole {
	case entity.RolePatient:
		if actorID == nil || *actorID != prescription.PatientID {
			return nil, ErrPrescriptionNotOwned
		}
	case entity.RoleDoctor:
		if actorID == nil || *actorID != prescription.DoctorID {
			return nil, ErrPrescriptionNotOwned
		}
	}

	return converter.PrescriptionToResponse(prescription), nil
}

func (u *prescriptionUsecase) GetByAppointment(ctx context.Context, appointmentID uint) (*dto.PrescriptionListResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if err := authorizeAppointment(ctx, appointment); err != nil {
		return nil, err
	}

	prescriptions, err := u.prescriptionRepo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for appointment %d: %+v", appointmentID, err)
		return nil, err
	}

	responses := converter.PrescriptionsToResponses(prescriptions)

	return &dto.PrescriptionListResponse{
		Prescriptions: responses,
		Total:         len(responses),
	}, nil
}

func (u *prescriptionUsecase) GetByPatient(ctx context.Context, patientID uint) (*dto.PrescriptionListResponse, error) {
	actorRole, actorID := actorFromContext(ctx)
	if actorRole == entity.RolePatient && (actorID == nil || *actorID != patientID) {
		return nil, ErrPrescriptionNotOwned
	}

	patient, err := u.patientRepo.FindByID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	prescriptions, err := u.prescriptionRepo.FindByPatientID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for patient %d: %+v", patientID, err)
		return nil, err
	}

	responses := converter.PrescriptionsToResponses(prescriptions)

	return &dto.PrescriptionListResponse{
		Prescriptions: responses,
		Total:         len(responses),
	}, nil
}
