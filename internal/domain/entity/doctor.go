package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Doctor represents a practicing doctor managed by the clinic
type Doctor struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Email           string          `gorm:"type:varchar(255);uniqueIndex:uni_doctors_email;not null" json:"email"`
	Phone           string          `gorm:"type:varchar(20);uniqueIndex:uni_doctors_phone;not null" json:"phone"`
	Specialty       string          `gorm:"type:varchar(100);not null;index" json:"specialty"`
	Bio             string          `gorm:"type:text" json:"bio,omitempty"`
	ConsultationFee decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"consultation_fee"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	AvailableTimes []DoctorAvailableTime `gorm:"foreignKey:DoctorID" json:"available_times,omitempty"`
	Appointments   []Appointment         `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}
