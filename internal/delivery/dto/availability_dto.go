package dto

import "time"

// Request DTOs

type CreateAvailabilityRequest struct {
	Slot string `json:"slot" validate:"required,slot"` // Format: HH:MM-HH:MM
}

// Response DTOs

type AvailabilityResponse struct {
	ID        uint      `json:"id"`
	DoctorID  uint      `json:"doctor_id"`
	Slot      string    `json:"slot"`
	CreatedAt time.Time `json:"created_at"`
}

type AvailabilityListResponse struct {
	Slots []AvailabilityResponse `json:"slots"`
	Total int                    `json:"total"`
}

type FreeSlotsResponse struct {
	DoctorID uint     `json:"doctor_id"`
	Date     string   `json:"date"` // Format: YYYY-MM-DD
	Slots    []string `json:"slots"`
}
