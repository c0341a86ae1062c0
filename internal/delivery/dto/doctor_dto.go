package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateDoctorRequest struct {
	Name            string          `json:"name" validate:"required,min=2,max=255"`
	Email           string          `json:"email" validate:"required,email"`
	Phone           string          `json:"phone" validate:"required,min=7,max=20"`
	Specialty       string          `json:"specialty" validate:"required,min=2,max=100"`
	Bio             string          `json:"bio" validate:"omitempty,max=2000"`
	ConsultationFee decimal.Decimal `json:"consultation_fee" validate:"omitempty"`
}

type UpdateDoctorRequest struct {
	Name            string          `json:"name" validate:"omitempty,min=2,max=255"`
	Email           string          `json:"email" validate:"omitempty,email"`
	Phone           string          `json:"phone" validate:"omitempty,min=7,max=20"`
	Specialty       string          `json:"specialty" validate:"omitempty,min=2,max=100"`
	Bio             string          `json:"bio" validate:"omitempty,max=2000"`
	ConsultationFee decimal.Decimal `json:"consultation_fee" validate:"omitempty"`
}

// Response DTOs

type DoctorResponse struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Specialty       string          `json:"specialty"`
	Bio             string          `json:"bio,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
