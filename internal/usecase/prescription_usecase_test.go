package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-service/internal/delivery/dto"
	"clinic-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type prescriptionFixture struct {
	usecase          PrescriptionUsecase
	prescriptionRepo *MockPrescriptionRepository
	appointmentRepo  *MockAppointmentRepository
	patientRepo      *MockPatientRepository
	auditService     *MockAuditService
}

func newPrescriptionFixture(t *testing.T, appointment *entity.Appointment) *prescriptionFixture {
	t.Helper()

	db, _ := newTestDB(t)

	appointmentRepo := &MockAppointmentRepository{
		FindByIDFunc: func(db *gorm.DB, id uint) (*entity.Appointment, error) {
			if appointment != nil && appointment.ID == id {
				copied := *appointment
				return &copied, nil
			}
			return nil, nil
		},
	}
	prescriptionRepo := &MockPrescriptionRepository{
		CreateFunc: func(ctx context.Context, prescription *entity.Prescription) (string, error) {
			return "665f1c2b8a9d4e0012345678", nil
		},
	}
	patientRepo := &MockPatientRepository{
		FindByIDFunc: func(db *gorm.DB, id uint) (*entity.Patient, error) {
			if id == 3 {
				return &entity.Patient{ID: 3, Name: "Budi Santoso"}, nil
			}
			return nil, nil
		},
	}
	auditService := &MockAuditService{}

	uc := NewPrescriptionUsecase(db, newTestLogger(), prescriptionRepo, appointmentRepo, patientRepo, auditService)

	return &prescriptionFixture{
		usecase:          uc,
		prescriptionRepo: prescriptionRepo,
		appointmentRepo:  appointmentRepo,
		patientRepo:      patientRepo,
		auditService:     auditService,
	}
}

func completedAppointment() *entity.Appointment {
	return &entity.Appointment{
		ID:              5,
		DoctorID:        7,
		PatientID:       3,
		BookingCode:     "BK-20250610-ABCDEF",
		AppointmentTime: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		Status:          entity.AppointmentStatusCompleted,
	}
}

func TestCreatePrescription(t *testing.T) {
	fixture := newPrescriptionFixture(t, completedAppointment())

	var stored *entity.Prescription
	fixture.prescriptionRepo.CreateFunc = func(ctx context.Context, prescription *entity.Prescription) (string, error) {
		stored = prescription
		return "665f1c2b8a9d4e0012345678", nil
	}

	resp, err := fixture.usecase.CreatePrescription(actorContext(entity.RoleDoctor, 7), &dto.CreatePrescriptionRequest{
		AppointmentID: 5,
		Content:       "Amoxicillin 500mg, 3x daily for 7 days",
	})
	require.NoError(t, err)

	assert.Equal(t, "665f1c2b8a9d4e0012345678", resp.ID)
	assert.Equal(t, uint(5), resp.AppointmentID)
	// Doctor and patient are denormalized from the appointment
	assert.Equal(t, uint(7), resp.DoctorID)
	assert.Equal(t, uint(3), resp.PatientID)
	assert.Equal(t, "Amoxicillin 500mg, 3x daily for 7 days", resp.Content)
	assert.WithinDuration(t, time.Now().UTC(), stored.IssuedAt, time.Minute)

	assert.Equal(t, int32(1), fixture.auditService.LogCreateCalls)
	assert.Equal(t, entity.AuditActionPrescriptionCreate, fixture.auditService.LastAction)
}

func TestCreatePrescriptionGuards(t *testing.T) {
	t.Run("unknown appointment", func(t *testing.T) {
		fixture := newPrescriptionFixture(t, nil)
		_, err := fixture.usecase.CreatePrescription(actorContext(entity.RoleAdmin, 1), &dto.CreatePrescriptionRequest{
			AppointmentID: 5,
			Content:       "anything",
		})
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("cancelled appointment", func(t *testing.T) {
		cancelled := completedAppointment()
		cancelled.Status = entity.AppointmentStatusCancelled
		fixture := newPrescriptionFixture(t, cancelled)

		_, err := fixture.usecase.CreatePrescription(actorContext(entity.RoleAdmin, 1), &dto.CreatePrescriptionRequest{
			AppointmentID: 5,
			Content:       "anything",
		})
		assert.ErrorIs(t, err, ErrPrescriptionForCancelled)
	})

	t.Run("another doctor's appointment", func(t *testing.T) {
		fixture := newPrescriptionFixture(t, completedAppointment())
		_, err := fixture.usecase.CreatePrescription(actorContext(entity.RoleDoctor, 99), &dto.CreatePrescriptionRequest{
			AppointmentID: 5,
			Content:       "anything",
		})
		assert.ErrorIs(t, err, ErrNotAppointmentDoctor)
	})

	t.Run("admin may prescribe on any appointment", func(t *testing.T) {
		fixture := newPrescriptionFixture(t, completedAppointment())
		_, err := fixture.usecase.CreatePrescription(actorContext(entity.RoleAdmin, 1), &dto.CreatePrescriptionRequest{
			AppointmentID: 5,
			Content:       "anything",
		})
		assert.NoError(t, err)
	})
}

func TestGetPrescriptionOwnership(t *testing.T) {
	fixture := newPrescriptionFixture(t, nil)
	fixture.prescriptionRepo.FindByIDFunc = func(ctx context.Context, id string) (*entity.Prescription, error) {
		if id == "665f1c2b8a9d4e0012345678" {
			return &entity.Prescription{
				ID:            "665f1c2b8a9d4e0012345678",
				AppointmentID: 5,
				DoctorID:      7,
				PatientID:     3,
				Content:       "Amoxicillin 500mg",
				IssuedAt:      time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
			}, nil
		}
		return nil, nil
	}

	tests := []struct {
		name    string
		role    string
		userID  uint
		wantErr error
	}{
		{name: "admin", role: entity.RoleAdmin, userID: 1},
		{name: "owning patient", role: entity.RolePatient, userID: 3},
		{name: "owning doctor", role: entity.RoleDoctor, userID: 7},
		{name: "other patient", role: entity.RolePatient, userID: 4, wantErr: ErrPrescriptionNotOwned},
		{name: "other doctor", role: entity.RoleDoctor, userID: 8, wantErr: ErrPrescriptionNotOwned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := fixture.usecase.GetPrescription(actorContext(tt.role, tt.userID), "665f1c2b8a9d4e0012345678")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Amoxicillin 500mg", resp.Content)
		})
	}

	t.Run("missing prescription", func(t *testing.T) {
		_, err := fixture.usecase.GetPrescription(actorContext(entity.RoleAdmin, 1), "ffffffffffffffffffffffff")
		assert.ErrorIs(t, err, ErrPrescriptionNotFound)
	})
}

func TestGetPrescriptionsByAppointment(t *testing.T) {
	fixture := newPrescriptionFixture(t, completedAppointment())
	fixture.prescriptionRepo.FindByAppointmentIDFunc = func(ctx context.Context, appointmentID uint) ([]entity.Prescription, error) {
		return []entity.Prescription{
			{ID: "665f1c2b8a9d4e0012345678", AppointmentID: 5, DoctorID: 7, PatientID: 3},
		}, nil
	}

	resp, err := fixture.usecase.GetByAppointment(actorContext(entity.RolePatient, 3), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	t.Run("appointment ownership applies", func(t *testing.T) {
		_, err := fixture.usecase.GetByAppointment(actorContext(entity.RolePatient, 4), 5)
		assert.ErrorIs(t, err, ErrAppointmentNotOwned)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		_, err := fixture.usecase.GetByAppointment(actorContext(entity.RoleAdmin, 1), 99)
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}

func TestGetPrescriptionsByPatient(t *testing.T) {
	fixture := newPrescriptionFixture(t, nil)
	fixture.prescriptionRepo.FindByPatientIDFunc = func(ctx context.Context, patientID uint) ([]entity.Prescription, error) {
		return []entity.Prescription{
			{ID: "665f1c2b8a9d4e0012345678", AppointmentID: 5, DoctorID: 7, PatientID: 3},
			{ID: "665f1c2b8a9d4e0012345679", AppointmentID: 6, DoctorID: 7, PatientID: 3},
		}, nil
	}

	resp, err := fixture.usecase.GetByPatient(actorContext(entity.RolePatient, 3), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	t.Run("patient cannot read another patient's history", func(t *testing.T) {
		_, err := fixture.usecase.GetByPatient(actorContext(entity.RolePatient, 4), 3)
		assert.ErrorIs(t, err, ErrPrescriptionNotOwned)
	})

	t.Run("unknown patient", func(t *testing.T) {
		_, err := fixture.usecase.GetByPatient(actorContext(entity.RoleAdmin, 1), 42)
		assert.ErrorIs(t, err, ErrPatientNotFound)
	})
}
