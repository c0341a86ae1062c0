package repository

import (
	"clinic-service/internal/domain/entity"

	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	Create(db *gorm.DB, slot *entity.DoctorAvailableTime) error
	FindByID(db *gorm.DB, id uint) (*entity.DoctorAvailableTime, error)
	FindByDoctorID(db *gorm.DB, doctorID uint) ([]entity.DoctorAvailableTime, error)
	Delete(db *gorm.DB, id uint) (int64, error)
	DeleteByDoctorID(db *gorm.DB, doctorID uint) (int64, error)
}
