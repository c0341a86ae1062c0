package entity

import "time"

// AppointmentFilter is a domain-level filter for querying appointments.
// Used by the repository layer to avoid coupling with delivery DTOs.
// Nil fields apply no constraint; name matches are case-insensitive
// substring matches.
type AppointmentFilter struct {
	DoctorID    *uint
	PatientID   *uint
	DoctorName  *string
	PatientName *string
	Status      *AppointmentStatus
	From        *time.Time // appointment_time >= From
	To          *time.Time // appointment_time < To
}
