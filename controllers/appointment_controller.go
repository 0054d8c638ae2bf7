package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/config"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/middleware"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/repositories"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/services"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/utils"
)

// dateLayout is the wire format for date-only fields
const dateLayout = "2006-01-02"

// CreateAppointmentRequest represents the request body for booking an appointment
type CreateAppointmentRequest struct {
	VehicleType            string `json:"vehicle_type" binding:"required"`
	VehicleBrand           string `json:"vehicle_brand" binding:"required"`
	Model                  string `json:"model" binding:"required"`
	YearOfManufacture      int    `json:"year_of_manufacture"`
	RegisterNumber         string `json:"register_number" binding:"required"`
	FuelType               string `json:"fuel_type"`
	ServiceCategory        string `json:"service_category" binding:"required"`
	ServiceType            string `json:"service_type" binding:"required"`
	AdditionalRequirements string `json:"additional_requirements"`
	AppointmentDate        string `json:"appointment_date" binding:"required"`
	TimeSlot               string `json:"time_slot" binding:"required"`
}

func appointmentService() *services.AppointmentService {
	db := config.GetDB()
	return services.NewAppointmentService(
		repositories.NewAppointmentRepository(db),
		repositories.NewUserRepository(db),
	)
}

// CreateAppointment handles POST /api/v1/appointments - books a new service appointment
func CreateAppointment(c *gin.Context) {
	username, err := middleware.GetUsername(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	appointmentDate, err := time.Parse(dateLayout, req.AppointmentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "appointment_date must be in YYYY-MM-DD format",
			},
		})
		return
	}

	appointment, err := appointmentService().Create(services.AppointmentInput{
		VehicleType:            req.VehicleType,
		VehicleBrand:           req.VehicleBrand,
		Model:                  req.Model,
		YearOfManufacture:      req.YearOfManufacture,
		RegisterNumber:         req.RegisterNumber,
		FuelType:               req.FuelType,
		ServiceCategory:        req.ServiceCategory,
		ServiceType:            req.ServiceType,
		AdditionalRequirements: req.AdditionalRequirements,
		AppointmentDate:        appointmentDate,
		TimeSlot:               req.TimeSlot,
	}, username)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    appointment,
	})
}

// ListMyAppointments handles GET /api/v1/appointments - lists the caller's appointments
func ListMyAppointments(c *gin.Context) {
	username, err := middleware.GetUsername(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	appointments, err := appointmentService().ListByCustomer(username)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Attach presigned photo URLs when photo storage is configured
	if photoService := services.GetPhotoService(); photoService != nil {
		for i := range appointments {
			if appointments[i].PhotoS3Key != nil {
				if url, urlErr := photoService.GetPhotoURL(*appointments[i].PhotoS3Key); urlErr == nil && url != "" {
					appointments[i].PhotoURL = &url
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointments,
	})
}

// GetAppointmentStatus handles GET /api/v1/appointments/:id/status
func GetAppointmentStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	status, err := appointmentService().Status(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":     id,
			"status": status,
		},
	})
}

// CancelAppointment handles PUT /api/v1/appointments/:id/cancel
func CancelAppointment(c *gin.Context) {
	username, err := middleware.GetUsername(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	appointment, err := appointmentService().Cancel(id, username)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
	})
}

// UploadVehiclePhoto handles POST /api/v1/appointments/:id/photo - attaches a
// vehicle photo to the caller's appointment
func UploadVehiclePhoto(c *gin.Context) {
	username, err := middleware.GetUsername(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	photoService := services.GetPhotoService()
	if photoService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PHOTO_STORAGE_UNAVAILABLE",
				"message": "Photo storage is not configured",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A photo file is required",
			},
		})
		return
	}

	photoKey, err := photoService.UploadPhoto(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to store the photo",
			},
		})
		return
	}

	appointment, previousKey, err := appointmentService().AttachPhoto(id, username, photoKey)
	if err != nil {
		// The photo was stored but the appointment rejected it; clean up
		if deleteErr := photoService.DeletePhoto(photoKey); deleteErr != nil {
			log.Printf("warning: failed to delete orphaned photo %s: %v", photoKey, deleteErr)
		}
		respondServiceError(c, err)
		return
	}

	// Replace semantics: the previous photo is no longer referenced
	if previousKey != "" {
		if deleteErr := photoService.DeletePhoto(previousKey); deleteErr != nil {
			log.Printf("warning: failed to delete replaced photo %s: %v", previousKey, deleteErr)
		}
	}

	if url, urlErr := photoService.GetPhotoURL(photoKey); urlErr == nil && url != "" {
		appointment.PhotoURL = &url
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    appointment,
	})
}

// parseIDParam parses the :id path parameter, writing a 400 response on failure
func parseIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid id parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}
