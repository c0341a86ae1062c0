package repository

import (
	"errors"

	"clinic-service/internal/domain/entity"
	domainRepo "clinic-service/internal/domain/repository"

	"gorm.io/gorm"
)

type availabilityRepository struct{}

func NewAvailabilityRepository() domainRepo.AvailabilityRepository {
	return &availabilityRepository{}
}

func (r *availabilityRepository) Create(db *gorm.DB, slot *entity.DoctorAvailableTime) error {
	return db.Create(slot).Error
}

func (r *availabilityRepository) FindByID(db *gorm.DB, id uint) (*entity.DoctorAvailableTime, error) {
	var slot entity.DoctorAvailableTime
	err := db.Where("id = ?", id).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *availabilityRepository) FindByDoctorID(db *gorm.DB, doctorID uint) ([]entity.DoctorAvailableTime, error) {
	var slots []entity.DoctorAvailableTime
	err := db.Where("doctor_id = ?", doctorID).Order("slot ASC").Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *availabilityRepository) Delete(db *gorm.DB, id uint) (int64, error) {
	affected := db.Where("id = ?", id).Delete(&entity.DoctorAvailableTime{})
	return affected.RowsAffected, affected.Error
}

func (r *availabilityRepository) DeleteByDoctorID(db *gorm.DB, doctorID uint) (int64, error) {
	affected := db.Where("doctor_id = ?", doctorID).Delete(&entity.DoctorAvailableTime{})
	return affected.RowsAffected, affected.Error
}
