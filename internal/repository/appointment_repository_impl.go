package repository

import (
	"errors"
	"time"

	"clinic-service/internal/domain/entity"
	domainRepo "clinic-service/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uint) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindDetailByID(db *gorm.DB, id uint) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Doctor").Preload("Patient").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveByDoctorBetween(db *gorm.DB, doctorID uint, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Where("doctor_id = ? AND status != ?", doctorID, entity.AppointmentStatusCancelled).
		Where("appointment_time >= ? AND appointment_time < ?", from, to).
		Order("appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Search runs the dashboard read queries. Nil filter fields apply no
// constraint; name filters match case-insensitive substrings. Ordering is
// fixed so identical filters always return identical sequences.
func (r *appointmentRepository) Search(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.
		Joins("JOIN doctors ON doctors.id = appointments.doctor_id").
		Joins("JOIN patients ON patients.id = appointments.patient_id")

	if filter != nil {
		if filter.DoctorID != nil {
			query = query.Where("appointments.doctor_id = ?", *filter.DoctorID)
		}
		if filter.PatientID != nil {
			query = query.Where("appointments.patient_id = ?", *filter.PatientID)
		}
		if filter.DoctorName != nil {
			query = query.Where("doctors.name ILIKE ?", "%"+*filter.DoctorName+"%")
		}
		if filter.PatientName != nil {
			query = query.Where("patients.name ILIKE ?", "%"+*filter.PatientName+"%")
		}
		if filter.Status != nil {
			query = query.Where("appointments.status = ?", *filter.Status)
		}
		if filter.From != nil {
			query = query.Where("appointments.appointment_time >= ?", *filter.From)
		}
		if filter.To != nil {
			query = query.Where("appointments.appointment_time < ?", *filter.To)
		}
	}

	err := query.
		Preload("Doctor").Preload("Patient").
		Order("appointments.appointment_time ASC, appointments.id ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateStatusFrom atomically moves an appointment between two statuses.
// Returns affected rows: 1 = success, 0 = appointment was not in the
// expected status (prevents illegal-transition races).
func (r *appointmentRepository) UpdateStatusFrom(db *gorm.DB, id uint, from, to entity.AppointmentStatus) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// CancelActive atomically cancels an appointment ONLY if it's still
// scheduled or confirmed. Returns affected rows: 1 = success, 0 = already
// cancelled or completed (prevents double-cancel race).
func (r *appointmentRepository) CancelActive(db *gorm.DB, id uint) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id, []entity.AppointmentStatus{
			entity.AppointmentStatusScheduled,
			entity.AppointmentStatusConfirmed,
		}).
		Update("status", entity.AppointmentStatusCancelled)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) DeleteByDoctorID(db *gorm.DB, doctorID uint) (int64, error) {
	affected := db.Where("doctor_id = ?", doctorID).Delete(&entity.Appointment{})
	return affected.RowsAffected, affected.Error
}
