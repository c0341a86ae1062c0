package dto

import "time"

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID        uint   `json:"doctor_id" validate:"required,min=1"`
	PatientID       uint   `json:"patient_id" validate:"required,min=1"`
	AppointmentTime string `json:"appointment_time" validate:"required"` // Format: RFC 3339
	Notes           string `json:"notes" validate:"omitempty,max=1000"`
}

type SearchAppointmentsRequest struct {
	DoctorID    *uint   `json:"doctor_id" validate:"omitempty,min=1"`
	PatientID   *uint   `json:"patient_id" validate:"omitempty,min=1"`
	DoctorName  *string `json:"doctor_name" validate:"omitempty,min=1"`
	PatientName *string `json:"patient_name" validate:"omitempty,min=1"`
	Status      *string `json:"status" validate:"omitempty,oneof=scheduled confirmed completed cancelled"`
	From        *string `json:"from" validate:"omitempty"` // Format: RFC 3339, inclusive
	To          *string `json:"to" validate:"omitempty"`   // Format: RFC 3339, exclusive
}

// Response DTOs

type AppointmentResponse struct {
	ID                  uint      `json:"id"`
	BookingCode         string    `json:"booking_code"`
	DoctorID            uint      `json:"doctor_id"`
	DoctorName          string    `json:"doctor_name"`
	PatientID           uint      `json:"patient_id"`
	PatientName         string    `json:"patient_name"`
	PatientEmail        string    `json:"patient_email"`
	PatientPhone        string    `json:"patient_phone"`
	PatientAddress      string    `json:"patient_address"`
	AppointmentTime     time.Time `json:"appointment_time"`
	AppointmentDate     string    `json:"appointment_date"`      // Format: YYYY-MM-DD
	AppointmentTimeOnly string    `json:"appointment_time_only"` // Format: HH:MM
	EndTime             time.Time `json:"end_time"`
	Status              string    `json:"status"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type DeleteDoctorAppointmentsResponse struct {
	DoctorID uint  `json:"doctor_id"`
	Deleted  int64 `json:"deleted"`
}
