package repository

import (
	"clinic-service/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id uint) (*entity.Doctor, error)
	// LockByID loads the doctor row with a FOR UPDATE lock, serializing
	// concurrent bookings for the same doctor within a transaction.
	LockByID(db *gorm.DB, id uint) (*entity.Doctor, error)
	FindAll(db *gorm.DB, specialty string) ([]entity.Doctor, error)
	Update(db *gorm.DB, doctor *entity.Doctor) error
	Delete(db *gorm.DB, id uint) (int64, error)
}
