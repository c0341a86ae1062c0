package usecase

import (
	"context"
	"crypto/rand"
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
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrAppointmentNotOwned         = errors.New("appointment does not belong to you")
	ErrAppointmentAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrInvalidStatusTransition     = errors.New("invalid status transition")
	ErrInvalidTimeFormat           = errors.New("invalid appointment time, use RFC 3339")
)

type AppointmentUsecase interface {
	// BookAppointment validates the requested 1-hour window against the
	// doctor's declared availability and existing bookings, then creates
	// the appointment inside one transaction.
	BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, appointmentID uint) (*dto.AppointmentResponse, error)
	SearchAppointments(ctx context.Context, req *dto.SearchAppointmentsRequest) (*dto.AppointmentListResponse, error)
	GetUpcomingByPatient(ctx context.Context, patientID uint) (*dto.AppointmentListResponse, error)
	ConfirmAppointment(ctx context.Context, appointmentID uint) (*dto.AppointmentResponse, error)
	CompleteAppointment(ctx context.Context, appointmentID uint) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, appointmentID uint) (*dto.AppointmentResponse, error)
	// DeleteDoctorAppointments removes every appointment of the doctor
	// and reports how many rows went away.
	DeleteDoctorAppointments(ctx context.Context, doctorID uint) (*dto.DeleteDoctorAppointmentsResponse, error)
}

type appointmentUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	appointmentRepo  repository.AppointmentRepository
	doctorRepo       repository.DoctorRepository
	patientRepo      repository.PatientRepository
	availabilityRepo repository.AvailabilityRepository
	auditService     service.AuditService
	slotCache        service.SlotCache
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	availabilityRepo repository.AvailabilityRepository,
	auditService service.AuditService,
	slotCache service.SlotCache,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:               db,
		log:              log,
		appointmentRepo:  appointmentRepo,
		doctorRepo:       doctorRepo,
		patientRepo:      patientRepo,
		availabilityRepo: availabilityRepo,
		auditService:     auditService,
		slotCache:        slotCache,
	}
}

// BookAppointment books a 1-hour visit.
//
// Flow:
// 1. Lock the doctor row, serializing concurrent bookings per doctor
// 2. Validate the patient exists
// 3. Check the start falls inside a declared slot
// 4. Check the window overlaps no non-cancelled appointment
// 5. Insert; the appointments_no_overlap constraint backstops races
func (u *appointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	requested, err := time.Parse(time.RFC3339, req.AppointmentTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	start := requested.UTC()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.LockByID(tx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to lock doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	patient, err := u.patientRepo.FindByID(tx, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	declared, err := u.availabilityRepo.FindByDoctorID(tx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}

	slots := make([]scheduling.Slot, 0, len(declared))
	for _, row := range declared {
		slot, err := scheduling.ParseSlot(row.Slot)
		if err != nil {
			u.log.Warnf("Skipping malformed slot %q for doctor %d: %+v", row.Slot, req.DoctorID, err)
			continue
		}
		slots = append(slots, slot)
	}

	// Only appointments starting less than one window before or after the
	// requested start can overlap it
	existing, err := u.appointmentRepo.FindActiveByDoctorBetween(tx, req.DoctorID, start.Add(-scheduling.SlotDuration), start.Add(scheduling.SlotDuration))
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}

	busy := make([]scheduling.Window, 0, len(existing))
	for _, appointment := range existing {
		busy = append(busy, appointment.Window())
	}

	if err := scheduling.ValidateBooking(slots, start, busy); err != nil {
		return nil, err
	}

	appointment := &entity.Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		BookingCode:     generateBookingCode(start),
		AppointmentTime: start,
		Status:          entity.AppointmentStatusScheduled,
		Notes:           req.Notes,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		// A race the row lock did not cover trips the store-level guard
		if isExclusionViolation(err, "appointments_no_overlap") {
			return nil, scheduling.ErrSlotConflict
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	// Audit log - book appointment
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.LogCreate(ctx, tx, actorRole, actorID, entity.AuditActionAppointmentBook, "appointment", fmt.Sprintf("%d", appointment.ID), converter.AppointmentToResponse(appointment)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.slotCache.Invalidate(ctx, req.DoctorID, scheduling.DayStart(start))

	u.log.Infof("Appointment booked: id=%d, doctor=%d, patient=%d, code=%s", appointment.ID, req.DoctorID, req.PatientID, appointment.BookingCode)

	// Reload with doctor+patient info for the response
	full, err := u.appointmentRepo.FindDetailByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %d: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, appointmentID uint) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindDetailByID(u.db.WithContext(ctx), appointmentID)
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

	return converter.AppointmentToResponse(appointment), nil
}

// authorizeAppointment limits doctors and patients to their own
// appointments; admins see everything.
func authorizeAppointment(ctx context.Context, appointment *entity.Appointment) error {
	role, actorID := actorFromContext(ctx)
	switch role {
	case entity.RolePatient:
		if actorID == nil || *actorID != appointment.PatientID {
			return ErrAppointmentNotOwned
		}
	case entity.RoleDoctor:
		if actorID == nil || *actorID != appointment.DoctorID {
			return ErrAppointmentNotOwned
		}
	}
	return nil
}

func (u *appointmentUsecase) SearchAppointments(ctx context.Context, req *dto.SearchAppointmentsRequest) (*dto.AppointmentListResponse, error) {
	filter := &entity.AppointmentFilter{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		DoctorName:  req.DoctorName,
		PatientName: req.PatientName,
	}

	// Non-admin callers only ever search their own appointments
	role, actorID := actorFromContext(ctx)
	switch role {
	case entity.RolePatient:
		filter.PatientID = actorID
	case entity.RoleDoctor:
		filter.DoctorID = actorID
	}

	if req.Status != nil {
		status := entity.AppointmentStatus(*req.Status)
		filter.Status = &status
	}
	if req.From != nil {
		from, err := time.Parse(time.RFC3339, *req.From)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		utc := from.UTC()
		filter.From = &utc
	}
	if req.To != nil {
		to, err := time.Parse(time.RFC3339, *req.To)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		utc := to.UTC()
		filter.To = &utc
	}

	appointments, err := u.appointmentRepo.Search(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to search appointments: %+v", err)
		return nil, err
	}

	responses := converter.AppointmentsToResponses(appointments)

	return &dto.AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}, nil
}

// GetUpcomingByPatient lists the patient's confirmed appointments that
// have not started yet.
func (u *appointmentUsecase) GetUpcomingByPatient(ctx context.Context, patientID uint) (*dto.AppointmentListResponse, error) {
	role, actorID := actorFromContext(ctx)
	if role == entity.RolePatient && (actorID == nil || *actorID != patientID) {
		return nil, ErrAppointmentNotOwned
	}

	patient, err := u.patientRepo.FindByID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	status := entity.AppointmentStatusConfirmed
	now := time.Now().UTC()
	filter := &entity.AppointmentFilter{
		PatientID: &patientID,
		Status:    &status,
		From:      &now,
	}

	appointments, err := u.appointmentRepo.Search(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to search appointments for patient %d: %+v", patientID, err)
		return nil, err
	}

	responses := converter.AppointmentsToResponses(appointments)

	return &dto.AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}, nil
}

func (u *appointmentUsecase) ConfirmAppointment(ctx context.Context, appointmentID uint) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, appointmentID, entity.AppointmentStatusScheduled, entity.AppointmentStatusConfirmed, entity.AuditActionAppointmentConfirm)
}

func (u *appointmentUsecase) CompleteAppointment(ctx context.Context, appointmentID uint) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, appointmentID, entity.AppointmentStatusConfirmed, entity.AppointmentStatusCompleted, entity.AuditActionAppointmentComplete)
}

// transition moves the appointment from one status to the next with a
// single conditional UPDATE, so concurrent calls cannot double-apply.
func (u *appointmentUsecase) transition(ctx context.Context, appointmentID uint, from, to entity.AppointmentStatus, action string) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
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

	rows, err := u.appointmentRepo.UpdateStatusFrom(tx, appointmentID, from, to)
	if err != nil {
		u.log.Warnf("Failed to update appointment %d status: %+v", appointmentID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidStatusTransition
	}

	// Audit log - status transition
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.LogUpdate(ctx, tx, actorRole, actorID, action, "appointment", fmt.Sprintf("%d", appointmentID), string(from), string(to)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment %s: id=%d", to, appointmentID)

	return u.GetAppointment(ctx, appointmentID)
}

func (u *appointmentUsecase) CancelAppointment(ctx context.Context, appointmentID uint) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
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
	if appointment.IsCancelled() {
		return nil, ErrAppointmentAlreadyCancelled
	}

	rows, err := u.appointmentRepo.CancelActive(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %d: %+v", appointmentID, err)
		return nil, err
	}
	if rows == 0 {
		// Completed visits stay completed; anything else lost a race to
		// another cancel
		if appointment.Status == entity.AppointmentStatusCompleted {
			return nil, ErrInvalidStatusTransition
		}
		return nil, ErrAppointmentAlreadyCancelled
	}

	// Audit log - cancel appointment
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.LogUpdate(ctx, tx, actorRole, actorID, entity.AuditActionAppointmentCancel, "appointment", fmt.Sprintf("%d", appointmentID), string(appointment.Status), string(entity.AppointmentStatusCancelled)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	// The cancelled window is bookable again
	u.slotCache.Invalidate(ctx, appointment.DoctorID, scheduling.DayStart(appointment.AppointmentTime))

	u.log.Infof("Appointment cancelled: id=%d, doctor=%d", appointmentID, appointment.DoctorID)

	return u.GetAppointment(ctx, appointmentID)
}

func (u *appointmentUsecase) DeleteDoctorAppointments(ctx context.Context, doctorID uint) (*dto.DeleteDoctorAppointmentsResponse, error) {
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

	deleted, err := u.appointmentRepo.DeleteByDoctorID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete appointments for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	// Audit log - purge doctor appointments
	actorRole, actorID := actorFromContext(ctx)
	if err := u.auditService.LogDelete(ctx, tx, actorRole, actorID, entity.AuditActionAppointmentPurge, "appointment", fmt.Sprintf("doctor:%d", doctorID), deleted); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.slotCache.InvalidateDoctor(ctx, doctorID)

	u.log.Infof("Appointments purged: doctor=%d, deleted=%d", doctorID, deleted)

	return &dto.DeleteDoctorAppointmentsResponse{
		DoctorID: doctorID,
		Deleted:  deleted,
	}, nil
}

// generateBookingCode generates a unique booking code: BK-YYYYMMDD-XXXXXX
func generateBookingCode(appointmentTime time.Time) string {
	dateStr := appointmentTime.UTC().Format("20060102")
	randomBytes := make([]byte, 3)
	rand.Read(randomBytes)
	randomStr := fmt.Sprintf("%06X", randomBytes)
	return fmt.Sprintf("BK-%s-%s", dateStr, randomStr)
}
