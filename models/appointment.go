package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment statuses. PENDING is the only initial state; COMPLETED and
// CANCELLED are terminal.
const (
	StatusPending    = "PENDING"
	StatusConfirmed  = "CONFIRMED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// Appointment represents a customer's vehicle service booking
type Appointment struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	VehicleType            string         `gorm:"not null" json:"vehicle_type"`
	VehicleBrand           string         `gorm:"not null" json:"vehicle_brand"`
	Model                  string         `gorm:"not null" json:"model"`
	YearOfManufacture      int            `json:"year_of_manufacture"`
	RegisterNumber         string         `gorm:"not null" json:"register_number"`
	FuelType               string         `json:"fuel_type"`
	ServiceCategory        string         `gorm:"not null" json:"service_category"`
	ServiceType            string         `gorm:"not null" json:"service_type"`
	AdditionalRequirements string         `json:"additional_requirements"`
	AppointmentDate        time.Time      `gorm:"not null" json:"appointment_date"`
	TimeSlot               string         `gorm:"not null" json:"time_slot"`
	Status                 string         `gorm:"not null;default:'PENDING'" json:"status"`
	PhotoS3Key             *string        `json:"photo_s3_key"`                 // nullable, S3 key for the vehicle photo
	PhotoURL               *string        `gorm:"-" json:"photo_url,omitempty"` // computed field, presigned URL for the photo
	UserID                 uint           `gorm:"not null;index" json:"user_id"` // foreign key to users table
	User                   User           `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// IsTerminal reports whether the appointment can no longer change state.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}
