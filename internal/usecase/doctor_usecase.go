package usecase

import (
	"context"
	"errors"
	"fmt"

	"clinic-service/internal/converter"
	"clinic-service/internal/delivery/dto"
	"clinic-service/internal/delivery/http/middleware"
	"clinic-service/internal/domain/entity"
	"clinic-service/internal/domain/repository"
	"clinic-service/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrDoctorEmailExists = errors.New("email already exists")
	ErrDoctorPhoneExists = errors.New("phone number already exists")
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID uint) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context, specialty string) (*dto.DoctorListResponse, error)
	UpdateDoctor(ctx context.Context, doctorID uint, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, doctorID uint) error
}

type doctorUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	doctorRepo       repository.DoctorRepository
	appointmentRepo  repository.AppointmentRepository
	availabilityRepo repository.AvailabilityRepository
	auditService     service.AuditService
	slotCache        service.SlotCache
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	availabilityRepo repository.AvailabilityRepository,
	auditService service.AuditService,
	slotCache service.SlotCache,
) DoctorUsecase {
	return &doctorUsecase{
		db:               db,
		log:              log,
		doctorRepo:       doctorRepo,
		appointmentRepo:  appointmentRepo,
		availabilityRepo: availabilityRepo,
		auditService:     auditService,
		slotCache:        slotCache,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor := &entity.Doctor{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Specialty:       req.Specialty,
		Bio:             req.Bio,
		ConsultationFee: req.ConsultationFee,
	}

	if err := u.doctorRepo.Create(tx, doctor); err != nil {
		if isDuplicateKeyError(err, "uni_doctors_email") {
			return nil, ErrDoctorEmailExists
		}
		if isDuplicateKeyError(err, "uni_doctors_phone") {
			return nil, ErrDoctorPhoneExists
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	// Audit log - create doctor
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.LogCreate(ctx, tx, actorRole, actorID, entity.AuditActionDoctorCreate, "doctor", fmt.Sprintf("%d", doctor.ID), converter.DoctorToResponse(doctor)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID uint) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context, specialty string) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.db.WithContext(ctx), specialty)
	if err != nil {
		u.log.Warnf("Failed to find all doctors: %+v", err)
		return nil, err
	}

	responses := converter.DoctorsToResponses(doctors)

	return &dto.DoctorListResponse{
		Doctors: responses,
		Total:   len(responses),
	}, nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, doctorID uint, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	// Capture old value for audit
	oldValue := converter.DoctorToResponse(doctor)

	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.Email != "" {
		doctor.Email = req.Email
	}
	if req.Phone != "" {
		doctor.Phone = req.Phone
	}
	if req.Specialty != "" {
		doctor.Specialty = req.Specialty
	}
	if req.Bio != "" {
		doctor.Bio = req.Bio
	}
	if !req.ConsultationFee.IsZero() {
		doctor.ConsultationFee = req.ConsultationFee
	}

	if err := u.doctorRepo.Update(tx, doctor); err != nil {
		if isDuplicateKeyError(err, "uni_doctors_email") {
			return nil, ErrDoctorEmailExists
		}
		if isDuplicateKeyError(err, "uni_doctors_phone") {
			return nil, ErrDoctorPhoneExists
		}
		u.log.Warnf("Failed to update doctor: %+v", err)
		return nil, err
	}

	// Audit log - update doctor
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.LogUpdate(ctx, tx, actorRole, actorID, entity.AuditActionDoctorUpdate, "doctor", fmt.Sprintf("%d", doctor.ID), oldValue, converter.DoctorToResponse(doctor)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(doctor), nil
}

// DeleteDoctor removes the doctor together with every appointment and
// declared slot in one transaction, so no orphaned rows survive a
// partial failure.
func (u *doctorUsecase) DeleteDoctor(ctx context.Context, doctorID uint) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	// Capture old value for audit
	oldValue := converter.DoctorToResponse(doctor)

	appointmentsDeleted, err := u.appointmentRepo.DeleteByDoctorID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete doctor appointments: %+v", err)
		return err
	}

	slotsDeleted, err := u.availabilityRepo.DeleteByDoctorID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete doctor availability: %+v", err)
		return err
	}

	if _, err := u.doctorRepo.Delete(tx, doctorID); err != nil {
		u.log.Warnf("Failed to delete doctor: %+v", err)
		return err
	}

	// Audit log - delete doctor
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.LogDelete(ctx, tx, actorRole, actorID, entity.AuditActionDoctorDelete, "doctor", fmt.Sprintf("%d", doctorID), oldValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	// Cached availability for this doctor is stale now
	u.slotCache.InvalidateDoctor(ctx, doctorID)

	u.log.Infof("Doctor deleted: id=%d, appointments=%d, slots=%d", doctorID, appointmentsDeleted, slotsDeleted)
	return nil
}

// actorFromContext resolves the authenticated caller for audit entries.
func actorFromContext(ctx context.Context) (string, *uint) {
	role, _ := middleware.GetRoleFromContext(ctx)
	if id, ok := middleware.GetUserIDFromContext(ctx); ok {
		return role, &id
	}
	return role, nil
}
