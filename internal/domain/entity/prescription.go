package entity

import "time"

// Prescription represents a prescription document issued after an
// appointment's clinical encounter. It lives in the document store and
// references its appointment by bare numeric ID: existence is checked
// when the prescription is written, never enforced afterward.
// Prescriptions are immutable once created.
type Prescription struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	AppointmentID uint      `json:"appointment_id" bson:"appointment_id"`
	DoctorID      uint      `json:"doctor_id" bson:"doctor_id"`
	PatientID     uint      `json:"patient_id" bson:"patient_id"`
	Content       string    `json:"content" bson:"content"`
	IssuedAt      time.Time `json:"issued_at" bson:"issued_at"`
}
