package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-service/internal/converter"
	"clinic-service/internal/delivery/dto"
	"clinic-service/internal/domain/entity"
	"clinic-service/internal/domain/repository"
	"clinic-service/internal/scheduling"
	"clinic-service/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrDuplicateSlot     = errors.New("slot already declared for this doctor")
	ErrSlotNotFound      = errors.New("slot not found")
)

const availabilityDateLayout = "2006-01-02"

type AvailabilityUsecase interface {
	// ResolveAvailability computes the doctor's free slots on the given
	// date: declared slots minus those whose 1-hour window overlaps a
	// non-cancelled appointment.
	ResolveAvailability(ctx context.Context, doctorID uint, date string) (*dto.FreeSlotsResponse, error)
	AddSlot(ctx context.Context, doctorID uint, req *dto.CreateAvailabilityRequest) (*dto.AvailabilityResponse, error)
	ListSlots(ctx context.Context, doctorID uint) (*dto.AvailabilityListResponse, error)
	RemoveSlot(ctx context.Context, doctorID, slotID uint) error
}

type availabilityUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	doctorRepo       repository.DoctorRepository
	availabilityRepo repository.AvailabilityRepository
	appointmentRepo  repository.AppointmentRepository
	auditService     service.AuditService
	slotCache        service.SlotCache
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	availabilityRepo repository.AvailabilityRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	slotCache service.SlotCache,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:               db,
		log:              log,
		doctorRepo:       doctorRepo,
		availabilityRepo: availabilityRepo,
		appointmentRepo:  appointmentRepo,
		auditService:     auditService,
		slotCache:        slotCache,
	}
}

func (u *availabilityUsecase) ResolveAvailability(ctx context.Context, doctorID uint, date string) (*dto.FreeSlotsResponse, error) {
	day, err := time.ParseInLocation(availabilityDateLayout, date, time.UTC)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	if cached, ok := u.slotCache.GetFreeSlots(ctx, doctorID, day); ok {
		return &dto.FreeSlotsResponse{
			DoctorID: doctorID,
			Date:     day.Format(availabilityDateLayout),
			Slots:    cached,
		}, nil
	}

	declared, err := u.availabilityRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	slots := make([]scheduling.Slot, 0, len(declared))
	for _, row := range declared {
		slot, err := scheduling.ParseSlot(row.Slot)
		if err != nil {
			// A malformed stored slot never blocks resolution
			u.log.Warnf("Skipping malformed slot %q for doctor %d: %+v", row.Slot, doctorID, err)
			continue
		}
		slots = append(slots, slot)
	}

	// Window starts before midnight can still occupy the day's first slot
	appointments, err := u.appointmentRepo.FindActiveByDoctorBetween(u.db.WithContext(ctx), doctorID, day.Add(-scheduling.SlotDuration), day.Add(24*time.Hour))
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	busy := make([]scheduling.Window, 0, len(appointments))
	for _, appointment := range appointments {
		busy = append(busy, appointment.Window())
	}

	free := scheduling.FreeSlots(slots, day, busy)
	rendered := make([]string, 0, len(free))
	for _, slot := range free {
		rendered = append(rendered, slot.String())
	}

	u.slotCache.SetFreeSlots(ctx, doctorID, day, rendered)

	return &dto.FreeSlotsResponse{
		DoctorID: doctorID,
		Date:     day.Format(availabilityDateLayout),
		Slots:    rendered,
	}, nil
}

func (u *availabilityUsecase) AddSlot(ctx context.Context, doctorID uint, req *dto.CreateAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	parsed, err := scheduling.ParseSlot(req.Slot)
	if err != nil {
		return nil, scheduling.ErrInvalidSlot
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	// Store the canonical rendering so "9:00- 10:00" style input cannot
	// create a second row for the same interval
	slot := &entity.DoctorAvailableTime{
		DoctorID: doctorID,
		Slot:     parsed.String(),
	}

	if err := u.availabilityRepo.Create(tx, slot); err != nil {
		if isDuplicateKeyError(err, "uni_doctor_available_times_slot") {
			return nil, ErrDuplicateSlot
		}
		u.log.Warnf("Failed to create slot: %+v", err)
		return nil, err
	}

	// Audit log - declare slot
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.LogCreate(ctx, tx, actorRole, actorID, entity.AuditActionAvailabilityCreate, "doctor_available_time", fmt.Sprintf("%d", slot.ID), converter.AvailabilityToResponse(slot)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	// The new slot affects every cached day for this doctor
	u.slotCache.InvalidateDoctor(ctx, doctorID)

	return converter.AvailabilityToResponse(slot), nil
}

func (u *availabilityUsecase) ListSlots(ctx context.Context, doctorID uint) (*dto.AvailabilityListResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	declared, err := u.availabilityRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	responses := converter.AvailabilitiesToResponses(declared)

	return &dto.AvailabilityListResponse{
		Slots: responses,
		Total: len(responses),
	}, nil
}

func (u *availabilityUsecase) RemoveSlot(ctx context.Context, doctorID, slotID uint) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	slot, err := u.availabilityRepo.FindByID(tx, slotID)
	if err != nil {
		u.log.Warnf("Failed to find slot %d: %+v", slotID, err)
		return err
	}
	if slot == nil || slot.DoctorID != doctorID {
		return ErrSlotNotFound
	}

	// Capture old value for audit
	oldValue := converter.AvailabilityToResponse(slot)

	rows, err := u.availabilityRepo.Delete(tx, slotID)
	if err != nil {
		u.log.Warnf("Failed to delete slot %d: %+v", slotID, err)
		return err
	}
	if rows == 0 {
		return ErrSlotNotFound
	}

	// Audit log - remove slot
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.LogDelete(ctx, tx, actorRole, actorID, entity.AuditActionAvailabilityDelete, "doctor_available_time", fmt.Sprintf("%d", slotID), oldValue); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.slotCache.InvalidateDoctor(ctx, doctorID)

	return nil
}
