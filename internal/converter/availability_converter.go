package converter

import (
	"clinic-service/internal/delivery/dto"
	"clinic-service/internal/domain/entity"
)

// AvailabilityToResponse converts a DoctorAvailableTime entity to AvailabilityResponse DTO
func AvailabilityToResponse(slot *entity.DoctorAvailableTime) *dto.AvailabilityResponse {
	if slot == nil {
		return nil
	}

	return &dto.AvailabilityResponse{
		ID:        slot.ID,
		DoctorID:  slot.DoctorID,
		Slot:      slot.Slot,
		CreatedAt: slot.CreatedAt,
	}
}

// AvailabilitiesToResponses converts a slice of DoctorAvailableTime entities to slice of AvailabilityResponse DTOs
func AvailabilitiesToResponses(slots []entity.DoctorAvailableTime) []dto.AvailabilityResponse {
	responses := make([]dto.AvailabilityResponse, len(slots))
	for i, slot := range slots {
		resp := AvailabilityToResponse(&slot)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
