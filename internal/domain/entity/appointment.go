package entity

import (
	"time"

	"clinic-service/internal/scheduling"
)

// AppointmentStatus represents the lifecycle state of an appointment.
// Legacy integer codes from the previous system map as 0 = scheduled,
// 1 = confirmed; completed and cancelled had no stable code.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a booked 1-hour visit between a doctor and a patient
type Appointment struct {
	ID              uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID        uint              `gorm:"not null;index" json:"doctor_id"`
	PatientID       uint              `gorm:"not null;index" json:"patient_id"`
	BookingCode     string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	AppointmentTime time.Time         `gorm:"not null;index" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"type:appointment_status;not null;default:'scheduled';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// EndTime returns the end of the occupied booking window.
func (a *Appointment) EndTime() time.Time {
	return a.AppointmentTime.Add(scheduling.SlotDuration)
}

// Window returns the half-open booking window [AppointmentTime, EndTime).
func (a *Appointment) Window() scheduling.Window {
	return scheduling.WindowAt(a.AppointmentTime)
}

// Occupies reports whether the appointment blocks its window for other
// bookings. Cancelled appointments free their window.
func (a *Appointment) Occupies() bool {
	return a.Status != AppointmentStatusCancelled
}

// IsScheduled checks if the appointment is awaiting confirmation
func (a *Appointment) IsScheduled() bool {
	return a.Status == AppointmentStatusScheduled
}

// IsConfirmed checks if the appointment is confirmed
func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// IsCancelled checks if the appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step:
// scheduled -> confirmed -> completed, with cancellation allowed from any
// state except completed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch next {
	case AppointmentStatusConfirmed:
		return s == AppointmentStatusScheduled
	case AppointmentStatusCompleted:
		return s == AppointmentStatusConfirmed
	case AppointmentStatusCancelled:
		return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
	default:
		return false
	}
}
