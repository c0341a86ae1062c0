package converter

import (
	"testing"
	"time"

	"clinic-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentToResponse(t *testing.T) {
	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	appointment := &entity.Appointment{
		ID:              12,
		DoctorID:        7,
		PatientID:       3,
		BookingCode:     "BK-20250610-A1B2C3",
		AppointmentTime: start,
		Status:          entity.AppointmentStatusScheduled,
		Notes:           "first visit",
		Doctor:          entity.Doctor{ID: 7, Name: "Dr. Amelia Reyes"},
		Patient: entity.Patient{
			ID:      3,
			Name:    "Budi Santoso",
			Email:   "budi@example.com",
			Phone:   "+62811111111",
			Address: "Jl. Melati 5",
		},
	}

	resp := AppointmentToResponse(appointment)
	require.NotNil(t, resp)

	assert.Equal(t, uint(12), resp.ID)
	assert.Equal(t, "BK-20250610-A1B2C3", resp.BookingCode)
	assert.Equal(t, start, resp.AppointmentTime)
	assert.Equal(t, "2025-06-10", resp.AppointmentDate)
	assert.Equal(t, "09:00", resp.AppointmentTimeOnly)
	assert.Equal(t, start.Add(time.Hour), resp.EndTime)
	assert.Equal(t, "scheduled", resp.Status)
	assert.Equal(t, "Dr. Amelia Reyes", resp.DoctorName)
	assert.Equal(t, "Budi Santoso", resp.PatientName)
	assert.Equal(t, "budi@example.com", resp.PatientEmail)
}

func TestAppointmentToResponseNormalizesTimezone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	appointment := &entity.Appointment{
		AppointmentTime: time.Date(2025, 6, 10, 16, 0, 0, 0, jakarta),
	}

	resp := AppointmentToResponse(appointment)
	require.NotNil(t, resp)

	// 16:00+07:00 is 09:00 UTC; derived fields always use UTC.
	assert.Equal(t, "2025-06-10", resp.AppointmentDate)
	assert.Equal(t, "09:00", resp.AppointmentTimeOnly)
	assert.Equal(t, time.UTC, resp.AppointmentTime.Location())
}

func TestAppointmentToResponseWithoutPreloads(t *testing.T) {
	resp := AppointmentToResponse(&entity.Appointment{ID: 1})
	require.NotNil(t, resp)

	assert.Empty(t, resp.DoctorName)
	assert.Empty(t, resp.PatientName)
}

func TestAppointmentToResponseNil(t *testing.T) {
	assert.Nil(t, AppointmentToResponse(nil))
}

func TestAppointmentsToResponses(t *testing.T) {
	appointments := []entity.Appointment{
		{ID: 1, BookingCode: "BK-20250610-AAAAAA"},
		{ID: 2, BookingCode: "BK-20250611-BBBBBB"},
	}

	responses := AppointmentsToResponses(appointments)
	require.Len(t, responses, 2)
	assert.Equal(t, uint(1), responses[0].ID)
	assert.Equal(t, "BK-20250611-BBBBBB", responses[1].BookingCode)

	assert.Empty(t, AppointmentsToResponses(nil))
}
