package converter

import (
	"clinic-service/internal/delivery/dto"
	"clinic-service/internal/domain/entity"
)

const (
	appointmentDateLayout = "2006-01-02"
	appointmentTimeLayout = "15:04"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// The date and time-only fields are derived from the stored UTC timestamp.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	start := appointment.AppointmentTime.UTC()

	response := &dto.AppointmentResponse{
		ID:                  appointment.ID,
		BookingCode:         appointment.BookingCode,
		DoctorID:            appointment.DoctorID,
		PatientID:           appointment.PatientID,
		AppointmentTime:     start,
		AppointmentDate:     start.Format(appointmentDateLayout),
		AppointmentTimeOnly: start.Format(appointmentTimeLayout),
		EndTime:             appointment.EndTime().UTC(),
		Status:              string(appointment.Status),
		Notes:               appointment.Notes,
		CreatedAt:           appointment.CreatedAt,
		UpdatedAt:           appointment.UpdatedAt,
	}

	// Flatten doctor and patient info if preloaded
	if appointment.Doctor.ID != 0 {
		response.DoctorName = appointment.Doctor.Name
	}
	if appointment.Patient.ID != 0 {
		response.PatientName = appointment.Patient.Name
		response.PatientEmail = appointment.Patient.Email
		response.PatientPhone = appointment.Patient.Phone
		response.PatientAddress = appointment.Patient.Address
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		resp := AppointmentToResponse(&appointment)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
