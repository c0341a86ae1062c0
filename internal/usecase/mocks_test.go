package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"clinic-service/internal/domain/entity"
	"clinic-service/internal/domain/repository"
	"clinic-service/internal/service"

	"gorm.io/gorm"
)

// Function-field mocks: each repository method delegates to an optional
// func field, so a test configures only the calls its flow makes.
// Lookups fail loudly when left unset; ambient services default to no-ops.

var _ repository.DoctorRepository = (*MockDoctorRepository)(nil)

type MockDoctorRepository struct {
	CreateFunc   func(db *gorm.DB, doctor *entity.Doctor) error
	FindByIDFunc func(db *gorm.DB, id uint) (*entity.Doctor, error)
	LockByIDFunc func(db *gorm.DB, id uint) (*entity.Doctor, error)
	FindAllFunc  func(db *gorm.DB, specialty string) ([]entity.Doctor, error)
	UpdateFunc   func(db *gorm.DB, doctor *entity.Doctor) error
	DeleteFunc   func(db *gorm.DB, id uint) (int64, error)

	LockByIDCalls int32
}

func (m *MockDoctorRepository) Create(db *gorm.DB, doctor *entity.Doctor) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(db, doctor)
	}
	return nil
}

func (m *MockDoctorRepository) FindByID(db *gorm.DB, id uint) (*entity.Doctor, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(db, id)
	}
	return nil, errors.New("FindByIDFunc not set")
}

func (m *MockDoctorRepository) LockByID(db *gorm.DB, id uint) (*entity.Doctor, error) {
	atomic.AddInt32(&m.LockByIDCalls, 1)
	if m.LockByIDFunc != nil {
		return m.LockByIDFunc(db, id)
	}
	return nil, errors.New("LockByIDFunc not set")
}

func (m *MockDoctorRepository) FindAll(db *gorm.DB, specialty string) ([]entity.Doctor, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(db, specialty)
	}
	return nil, errors.New("FindAllFunc not set")
}

func (m *MockDoctorRepository) Update(db *gorm.DB, doctor *entity.Doctor) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(db, doctor)
	}
	return nil
}

func (m *MockDoctorRepository) Delete(db *gorm.DB, id uint) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(db, id)
	}
	return 1, nil
}

var _ repository.PatientRepository = (*MockPatientRepository)(nil)

type MockPatientRepository struct {
	CreateFunc   func(db *gorm.DB, patient *entity.Patient) error
	FindByIDFunc func(db *gorm.DB, id uint) (*entity.Patient, error)
	FindAllFunc  func(db *gorm.DB) ([]entity.Patient, error)
	UpdateFunc   func(db *gorm.DB, patient *entity.Patient) error
	DeleteFunc   func(db *gorm.DB, id uint) (int64, error)
}

func (m *MockPatientRepository) Create(db *gorm.DB, patient *entity.Patient) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(db, patient)
	}
	return nil
}

func (m *MockPatientRepository) FindByID(db *gorm.DB, id uint) (*entity.Patient, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(db, id)
	}
	return nil, errors.New("FindByIDFunc not set")
}

func (m *MockPatientRepository) FindAll(db *gorm.DB) ([]entity.Patient, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(db)
	}
	return nil, errors.New("FindAllFunc not set")
}

func (m *MockPatientRepository) Update(db *gorm.DB, patient *entity.Patient) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(db, patient)
	}
	return nil
}

func (m *MockPatientRepository) Delete(db *gorm.DB, id uint) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(db, id)
	}
	return 1, nil
}

var _ repository.AdminRepository = (*MockAdminRepository)(nil)

type MockAdminRepository struct {
	CreateFunc         func(db *gorm.DB, admin *entity.Admin) error
	FindByIDFunc       func(db *gorm.DB, id uint) (*entity.Admin, error)
	FindByUsernameFunc func(db *gorm.DB, username string) (*entity.Admin, error)

	CreateCalls int32
}

func (m *MockAdminRepository) Create(db *gorm.DB, admin *entity.Admin) error {
	atomic.AddInt32(&m.CreateCalls, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(db, admin)
	}
	return nil
}

func (m *MockAdminRepository) FindByID(db *gorm.DB, id uint) (*entity.Admin, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(db, id)
	}
	return nil, errors.New("FindByIDFunc not set")
}

func (m *MockAdminRepository) FindByUsername(db *gorm.DB, username string) (*entity.Admin, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(db, username)
	}
	return nil, errors.New("FindByUsernameFunc not set")
}

var _ repository.AppointmentRepository = (*MockAppointmentRepository)(nil)

type MockAppointmentRepository struct {
	CreateFunc                    func(db *gorm.DB, appointment *entity.Appointment) error
	FindByIDFunc                  func(db *gorm.DB, id uint) (*entity.Appointment, error)
	FindDetailByIDFunc            func(db *gorm.DB, id uint) (*entity.Appointment, error)
	FindActiveByDoctorBetweenFunc func(db *gorm.DB, doctorID uint, from, to time.Time) ([]entity.Appointment, error)
	SearchFunc                    func(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	UpdateStatusFromFunc          func(db *gorm.DB, id uint, from, to entity.AppointmentStatus) (int64, error)
	CancelActiveFunc              func(db *gorm.DB, id uint) (int64, error)
	DeleteByDoctorIDFunc          func(db *gorm.DB, doctorID uint) (int64, error)

	CreateCalls int32
}

func (m *MockAppointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	atomic.AddInt32(&m.CreateCalls, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(db, appointment)
	}
	return nil
}

func (m *MockAppointmentRepository) FindByID(db *gorm.DB, id uint) (*entity.Appointment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(db, id)
	}
	return nil, errors.New("FindByIDFunc not set")
}

func (m *MockAppointmentRepository) FindDetailByID(db *gorm.DB, id uint) (*entity.Appointment, error) {
	if m.FindDetailByIDFunc != nil {
		return m.FindDetailByIDFunc(db, id)
	}
	return nil, errors.New("FindDetailByIDFunc not set")
}

func (m *MockAppointmentRepository) FindActiveByDoctorBetween(db *gorm.DB, doctorID uint, from, to time.Time) ([]entity.Appointment, error) {
	if m.FindActiveByDoctorBetweenFunc != nil {
		return m.FindActiveByDoctorBetweenFunc(db, doctorID, from, to)
	}
	return nil, errors.New("FindActiveByDoctorBetweenFunc not set")
}

func (m *MockAppointmentRepository) Search(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(db, filter)
	}
	return nil, errors.New("SearchFunc not set")
}

func (m *MockAppointmentRepository) UpdateStatusFrom(db *gorm.DB, id uint, from, to entity.AppointmentStatus) (int64, error) {
	if m.UpdateStatusFromFunc != nil {
		return m.UpdateStatusFromFunc(db, id, from, to)
	}
	return 0, errors.New("UpdateStatusFromFunc not set")
}

func (m *MockAppointmentRepository) CancelActive(db *gorm.DB, id uint) (int64, error) {
	if m.CancelActiveFunc != nil {
		return m.CancelActiveFunc(db, id)
	}
	return 0, errors.New("CancelActiveFunc not set")
}

func (m *MockAppointmentRepository) DeleteByDoctorID(db *gorm.DB, doctorID uint) (int64, error) {
	if m.DeleteByDoctorIDFunc != nil {
		return m.DeleteByDoctorIDFunc(db, doctorID)
	}
	return 0, errors.New("DeleteByDoctorIDFunc not set")
}

var _ repository.AvailabilityRepository = (*MockAvailabilityRepository)(nil)

type MockAvailabilityRepository struct {
	CreateFunc           func(db *gorm.DB, slot *entity.DoctorAvailableTime) error
	FindByIDFunc         func(db *gorm.DB, id uint) (*entity.DoctorAvailableTime, error)
	FindByDoctorIDFunc   func(db *gorm.DB, doctorID uint) ([]entity.DoctorAvailableTime, error)
	DeleteFunc           func(db *gorm.DB, id uint) (int64, error)
	DeleteByDoctorIDFunc func(db *gorm.DB, doctorID uint) (int64, error)

	FindByDoctorIDCalls int32
}

func (m *MockAvailabilityRepository) Create(db *gorm.DB, slot *entity.DoctorAvailableTime) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(db, slot)
	}
	return nil
}

func (m *MockAvailabilityRepository) FindByID(db *gorm.DB, id uint) (*entity.DoctorAvailableTime, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(db, id)
	}
	return nil, errors.New("FindByIDFunc not set")
}

func (m *MockAvailabilityRepository) FindByDoctorID(db *gorm.DB, doctorID uint) ([]entity.DoctorAvailableTime, error) {
	atomic.AddInt32(&m.FindByDoctorIDCalls, 1)
	if m.FindByDoctorIDFunc != nil {
		return m.FindByDoctorIDFunc(db, doctorID)
	}
	return nil, errors.New("FindByDoctorIDFunc not set")
}

func (m *MockAvailabilityRepository) Delete(db *gorm.DB, id uint) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(db, id)
	}
	return 1, nil
}

func (m *MockAvailabilityRepository) DeleteByDoctorID(db *gorm.DB, doctorID uint) (int64, error) {
	if m.DeleteByDoctorIDFunc != nil {
		return m.DeleteByDoctorIDFunc(db, doctorID)
	}
	return 0, errors.New("DeleteByDoctorIDFunc not set")
}

var _ repository.AuditLogRepository = (*MockAuditLogRepository)(nil)

type MockAuditLogRepository struct {
	CreateFunc   func(db *gorm.DB, log *entity.AuditLog) error
	FindAllFunc  func(db *gorm.DB) ([]entity.AuditLog, error)
	FindByIDFunc func(db *gorm.DB, id int64) (*entity.AuditLog, error)
}

func (m *MockAuditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(db, log)
	}
	return nil
}

func (m *MockAuditLogRepository) FindAll(db *gorm.DB) ([]entity.AuditLog, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(db)
	}
	return nil, errors.New("FindAllFunc not set")
}

func (m *MockAuditLogRepository) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(db, id)
	}
	return nil, errors.New("FindByIDFunc not set")
}

var _ repository.PrescriptionRepository = (*MockPrescriptionRepository)(nil)

type MockPrescriptionRepository struct {
	CreateFunc              func(ctx context.Context, prescription *entity.Prescription) (string, error)
	FindByIDFunc            func(ctx context.Context, id string) (*entity.Prescription, error)
	FindByAppointmentIDFunc func(ctx context.Context, appointmentID uint) ([]entity.Prescription, error)
	FindByPatientIDFunc     func(ctx context.Context, patientID uint) ([]entity.Prescription, error)
}

func (m *MockPrescriptionRepository) Create(ctx context.Context, prescription *entity.Prescription) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, prescription)
	}
	return "", errors.New("CreateFunc not set")
}

func (m *MockPrescriptionRepository) FindByID(ctx context.Context, id string) (*entity.Prescription, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("FindByIDFunc not set")
}

func (m *MockPrescriptionRepository) FindByAppointmentID(ctx context.Context, appointmentID uint) ([]entity.Prescription, error) {
	if m.FindByAppointmentIDFunc != nil {
		return m.FindByAppointmentIDFunc(ctx, appointmentID)
	}
	return nil, errors.New("FindByAppointmentIDFunc not set")
}

func (m *MockPrescriptionRepository) FindByPatientID(ctx context.Context, patientID uint) ([]entity.Prescription, error) {
	if m.FindByPatientIDFunc != nil {
		return m.FindByPatientIDFunc(ctx, patientID)
	}
	return nil, errors.New("FindByPatientIDFunc not set")
}

// MockAuditService records audit calls without touching storage.
var _ service.AuditService = (*MockAuditService)(nil)

type MockAuditService struct {
	LogCalls       int32
	LogCreateCalls int32
	LogUpdateCalls int32
	LogDeleteCalls int32

	LastAction string
}

func (m *MockAuditService) Log(ctx context.Context, tx *gorm.DB, actorRole string, actorID *uint, action string, metadata entity.JSON) error {
	atomic.AddInt32(&m.LogCalls, 1)
	m.LastAction = action
	return nil
}

func (m *MockAuditService) LogCreate(ctx context.Context, tx *gorm.DB, actorRole string, actorID *uint, action string, entityName string, entityID string, newValue interface{}) error {
	atomic.AddInt32(&m.LogCreateCalls, 1)
	m.LastAction = action
	return nil
}

func (m *MockAuditService) LogUpdate(ctx context.Context, tx *gorm.DB, actorRole string, actorID *uint, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	atomic.AddInt32(&m.LogUpdateCalls, 1)
	m.LastAction = action
	return nil
}

func (m *MockAuditService) LogDelete(ctx context.Context, tx *gorm.DB, actorRole string, actorID *uint, action string, entityName string, entityID string, oldValue interface{}) error {
	atomic.AddInt32(&m.LogDeleteCalls, 1)
	m.LastAction = action
	return nil
}

// MockSlotCache defaults to an always-miss cache.
var _ service.SlotCache = (*MockSlotCache)(nil)

type MockSlotCache struct {
	GetFreeSlotsFunc func(ctx context.Context, doctorID uint, day time.Time) ([]string, bool)

	GetCalls              int32
	SetCalls              int32
	InvalidateCalls       int32
	InvalidateDoctorCalls int32

	LastSet        []string
	LastInvalidate time.Time
}

func (m *MockSlotCache) GetFreeSlots(ctx context.Context, doctorID uint, day time.Time) ([]string, bool) {
	atomic.AddInt32(&m.GetCalls, 1)
	if m.GetFreeSlotsFunc != nil {
		return m.GetFreeSlotsFunc(ctx, doctorID, day)
	}
	return nil, false
}

func (m *MockSlotCache) SetFreeSlots(ctx context.Context, doctorID uint, day time.Time, slots []string) {
	atomic.AddInt32(&m.SetCalls, 1)
	m.LastSet = slots
}

func (m *MockSlotCache) Invalidate(ctx context.Context, doctorID uint, day time.Time) {
	atomic.AddInt32(&m.InvalidateCalls, 1)
	m.LastInvalidate = day
}

func (m *MockSlotCache) InvalidateDoctor(ctx context.Context, doctorID uint) {
	atomic.AddInt32(&m.InvalidateDoctorCalls, 1)
}
