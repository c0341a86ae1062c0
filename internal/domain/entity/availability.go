package entity

import "time"

// DoctorAvailableTime represents a recurring time slot during which a
// doctor accepts appointments. Slot holds the raw "HH:MM-HH:MM" string;
// parsing and window arithmetic live in the scheduling package.
type DoctorAvailableTime struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  uint      `gorm:"not null;uniqueIndex:uni_doctor_available_times_slot" json:"doctor_id"`
	Slot      string    `gorm:"type:varchar(11);not null;uniqueIndex:uni_doctor_available_times_slot" json:"slot"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (DoctorAvailableTime) TableName() string {
	return "doctor_available_times"
}
