package repository

import (
	"time"

	"clinic-service/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uint) (*entity.Appointment, error)
	// FindDetailByID loads the appointment with its doctor and patient
	// for view projection.
	FindDetailByID(db *gorm.DB, id uint) (*entity.Appointment, error)
	// FindActiveByDoctorBetween returns non-cancelled appointments for the
	// doctor with appointment_time in [from, to).
	FindActiveByDoctorBetween(db *gorm.DB, doctorID uint, from, to time.Time) ([]entity.Appointment, error)
	Search(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	// UpdateStatusFrom atomically moves the appointment from one status to
	// another, returning the number of rows changed.
	UpdateStatusFrom(db *gorm.DB, id uint, from, to entity.AppointmentStatus) (int64, error)
	// CancelActive cancels the appointment unless it is already cancelled
	// or completed, returning the number of rows changed.
	CancelActive(db *gorm.DB, id uint) (int64, error)
	DeleteByDoctorID(db *gorm.DB, doctorID uint) (int64, error)
}
