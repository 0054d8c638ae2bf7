package repositories

import (
	"errors"
	"fmt"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/models"
	"gorm.io/gorm"
)

// AppointmentRepository is the record store for appointments.
type AppointmentRepository interface {
	// FindByID fetches an appointment with its owner preloaded. Returns (nil, nil) when absent.
	FindByID(id uint) (*models.Appointment, error)

	// FindByUser returns all appointments owned by the given user.
	FindByUser(userID uint) ([]models.Appointment, error)

	// Create inserts a new appointment record.
	Create(appointment *models.Appointment) error

	// Save writes the full appointment record (insert or replace).
	Save(appointment *models.Appointment) error
}

// GormAppointmentRepository implements AppointmentRepository on a GORM connection.
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates an AppointmentRepository backed by the given database.
func NewAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// FindByID fetches an appointment with its owner preloaded
func (r *GormAppointmentRepository) FindByID(id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.Preload("User").First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return &appointment, nil
}

// FindByUser returns all appointments owned by the given user
func (r *GormAppointmentRepository) FindByUser(userID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := r.db.Where("user_id = ?", userID).Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	return appointments, nil
}

// Create inserts a new appointment record. The owner association is omitted;
// the engine never mutates user records.
func (r *GormAppointmentRepository) Create(appointment *models.Appointment) error {
	return r.db.Omit("User").Create(appointment).Error
}

// Save writes the full appointment record
func (r *GormAppointmentRepository) Save(appointment *models.Appointment) error {
	return r.db.Omit("User").Save(appointment).Error
}
