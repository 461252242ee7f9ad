package models

import "time"

// Patient is one patient record. Email and Phone are designated sensitive
// fields: repositories store them as field-cipher blobs and the patient
// service decrypts them after retrieval. All other fields pass through
// storage unchanged.
type Patient struct {
	ID              string
	Gender          string
	Age             float64
	Hypertension    int
	HeartDisease    int
	EverMarried     string
	WorkType        string
	ResidenceType   string
	AvgGlucoseLevel float64
	BMI             float64
	SmokingStatus   string
	Stroke          int
	Email           string
	Phone           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
