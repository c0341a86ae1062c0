package dto

import "time"

// Request DTOs

type CreatePrescriptionRequest struct {
	AppointmentID uint   `json:"appointment_id" validate:"required,min=1"`
	Content       string `json:"content" validate:"required,min=1,max=10000"`
}

// Response DTOs

type PrescriptionResponse struct {
	ID            string    `json:"id"`
	AppointmentID uint      `json:"appointment_id"`
	DoctorID      uint      `json:"doctor_id"`
	PatientID     uint      `json:"patient_id"`
	Content       string    `json:"content"`
	IssuedAt      time.Time `json:"issued_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}
