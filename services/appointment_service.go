package services

import (
	"fmt"
	"time"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/models"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/repositories"
)

// AppointmentInput carries the descriptive fields for a new appointment.
// Everything is copied verbatim onto the record; the engine only decides
// ownership and status.
type AppointmentInput struct {
	VehicleType            string
	VehicleBrand           string
	Model                  string
	YearOfManufacture      int
	RegisterNumber         string
	FuelType               string
	ServiceCategory        string
	ServiceType            string
	AdditionalRequirements string
	AppointmentDate        time.Time
	TimeSlot               string
}

// AppointmentService owns the appointment lifecycle rules: which statuses an
// appointment may move through and who may cancel it.
type AppointmentService struct {
	appointments repositories.AppointmentRepository
	users        repositories.UserRepository
}

// NewAppointmentService creates an AppointmentService over the given stores.
func NewAppointmentService(appointments repositories.AppointmentRepository, users repositories.UserRepository) *AppointmentService {
	return &AppointmentService{appointments: appointments, users: users}
}

// Create books a new appointment for the user identified by username.
// The appointment always starts at PENDING.
func (s *AppointmentService) Create(input AppointmentInput, username string) (*models.Appointment, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", Message: "User not found"}
	}

	appointment := &models.Appointment{
		VehicleType:            input.VehicleType,
		VehicleBrand:           input.VehicleBrand,
		Model:                  input.Model,
		YearOfManufacture:      input.YearOfManufacture,
		RegisterNumber:         input.RegisterNumber,
		FuelType:               input.FuelType,
		ServiceCategory:        input.ServiceCategory,
		ServiceType:            input.ServiceType,
		AdditionalRequirements: input.AdditionalRequirements,
		AppointmentDate:        input.AppointmentDate,
		TimeSlot:               input.TimeSlot,
		Status:                 models.StatusPending,
		UserID:                 user.ID,
	}

	if err := s.appointments.Create(appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	appointment.User = *user
	return appointment, nil
}

// ListByCustomer returns all appointments owned by the user identified by username.
func (s *AppointmentService) ListByCustomer(username string) ([]models.Appointment, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", Message: "User not found"}
	}
	return s.appointments.FindByUser(user.ID)
}

// Get returns the appointment if the requesting user owns it.
func (s *AppointmentService) Get(appointmentID uint, username string) (*models.Appointment, error) {
	appointment, err := s.appointments.FindByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, &NotFoundError{Resource: "appointment", Message: "Appointment not found"}
	}
	if appointment.User.Username != username {
		return nil, &ForbiddenError{Message: "You are not authorized to view this appointment"}
	}
	return appointment, nil
}

// Status returns the current status of an appointment.
func (s *AppointmentService) Status(appointmentID uint) (string, error) {
	appointment, err := s.appointments.FindByID(appointmentID)
	if err != nil {
		return "", err
	}
	if appointment == nil {
		return "", &NotFoundError{Resource: "appointment", Message: "Appointment not found"}
	}
	return appointment.Status, nil
}

// AttachPhoto records a vehicle photo key on an appointment. Only the owner
// may attach a photo. Returns the previous photo key, if any, so the caller
// can clean up the replaced object.
func (s *AppointmentService) AttachPhoto(appointmentID uint, username, photoKey string) (*models.Appointment, string, error) {
	appointment, err := s.appointments.FindByID(appointmentID)
	if err != nil {
		return nil, "", err
	}
	if appointment == nil {
		return nil, "", &NotFoundError{Resource: "appointment", Message: "Appointment not found"}
	}
	if appointment.User.Username != username {
		return nil, "", &ForbiddenError{Message: "You are not authorized to modify this appointment"}
	}

	previousKey := ""
	if appointment.PhotoS3Key != nil {
		previousKey = *appointment.PhotoS3Key
	}

	appointment.PhotoS3Key = &photoKey
	if err := s.appointments.Save(appointment); err != nil {
		return nil, "", fmt.Errorf("failed to attach photo: %w", err)
	}
	return appointment, previousKey, nil
}

// Cancel moves an appointment to CANCELLED. Only the owner may cancel, and
// only while the appointment has not already finished.
func (s *AppointmentService) Cancel(appointmentID uint, username string) (*models.Appointment, error) {
	appointment, err := s.appointments.FindByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, &NotFoundError{Resource: "appointment", Message: "Appointment not found"}
	}

	// Only the owner can cancel their appointment
	if appointment.User.Username != username {
		return nil, &ForbiddenError{Message: "You are not authorized to cancel this appointment"}
	}

	if appointment.Status == models.StatusCancelled {
		return nil, &InvalidStateError{Message: "Appointment is already cancelled"}
	}
	if appointment.Status == models.StatusCompleted {
		return nil, &InvalidStateError{Message: "Completed appointments cannot be cancelled"}
	}

	appointment.Status = models.StatusCancelled
	if err := s.appointments.Save(appointment); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	return appointment, nil
}
