package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/config"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/middleware"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/models"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/repositories"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/services"
)

// TeamMemberRequest represents the request body for creating or updating a roster member
type TeamMemberRequest struct {
	FullName           string `json:"full_name" binding:"required"`
	NIC                string `json:"nic" binding:"required"`
	ContactNo          string `json:"contact_no" binding:"required"`
	BirthDate          string `json:"birth_date" binding:"required"`
	Address            string `json:"address" binding:"required"`
	City               string `json:"city" binding:"required"`
	Specialization     string `json:"specialization" binding:"required"`
	JoinedDate         string `json:"joined_date" binding:"required"`
	WorkingHoursPerDay string `json:"working_hours_per_day" binding:"required"`
	TeamID             string `json:"team_id" binding:"required"`
	SupervisorID       *uint  `json:"supervisor_id"`
}

// AssignSupervisorRequest represents the request body for assigning a supervisor
type AssignSupervisorRequest struct {
	SupervisorID uint `json:"supervisor_id" binding:"required"`
}

func teamMemberService() *services.TeamMemberService {
	db := config.GetDB()
	return services.NewTeamMemberService(
		repositories.NewTeamMemberRepository(db),
		repositories.NewUserRepository(db),
	)
}

// requireAdmin resolves the caller and verifies they hold the admin role.
// Roster mutations are restricted to administrators.
func requireAdmin(c *gin.Context) bool {
	username, err := middleware.GetUsername(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return false
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only administrators can manage the roster",
			},
		})
		return false
	}

	return true
}

// bindTeamMemberInput parses the request body into a service input, writing a
// 400 response on failure
func bindTeamMemberInput(c *gin.Context) (services.TeamMemberInput, bool) {
	var req TeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return services.TeamMemberInput{}, false
	}

	birthDate, err := time.Parse(dateLayout, req.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "birth_date must be in YYYY-MM-DD format",
			},
		})
		return services.TeamMemberInput{}, false
	}

	joinedDate, err := time.Parse(dateLayout, req.JoinedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "joined_date must be in YYYY-MM-DD format",
			},
		})
		return services.TeamMemberInput{}, false
	}

	return services.TeamMemberInput{
		FullName:           req.FullName,
		NIC:                req.NIC,
		ContactNo:          req.ContactNo,
		BirthDate:          birthDate,
		Address:            req.Address,
		City:               req.City,
		Specialization:     req.Specialization,
		JoinedDate:         joinedDate,
		WorkingHoursPerDay: req.WorkingHoursPerDay,
		TeamID:             req.TeamID,
		SupervisorID:       req.SupervisorID,
	}, true
}

// CreateTeamMember handles POST /api/v1/team-members (admin only)
func CreateTeamMember(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	input, ok := bindTeamMemberInput(c)
	if !ok {
		return
	}

	member, err := teamMemberService().Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    member,
	})
}

// UpdateTeamMember handles PUT /api/v1/team-members/:id (admin only)
func UpdateTeamMember(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	input, ok := bindTeamMemberInput(c)
	if !ok {
		return
	}

	member, err := teamMemberService().Update(id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    member,
	})
}

// DeleteTeamMember handles DELETE /api/v1/team-members/:id (admin only).
// Deletion is idempotent; removing an absent member is not an error.
func DeleteTeamMember(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	deleted, err := teamMemberService().Delete(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deleted": deleted,
		},
	})
}

// GetTeamMember handles GET /api/v1/team-members/:id
func GetTeamMember(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	member, err := teamMemberService().Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    member,
	})
}

// ListTeamMembers handles GET /api/v1/team-members - lists the roster with
// optional filters. Every filter is independently optional; an unset query
// parameter imposes no constraint.
func ListTeamMembers(c *gin.Context) {
	filter := repositories.MemberFilter{}

	if teamID := c.Query("team_id"); teamID != "" {
		filter.TeamID = &teamID
	}
	if spec := c.Query("specialization"); spec != "" {
		parsed, err := models.ParseSpecialization(spec)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "specialization", Message: err.Error()})
			return
		}
		filter.Specialization = &parsed
	}
	if city := c.Query("city"); city != "" {
		parsed, err := models.ParseDistrict(city)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "city", Message: err.Error()})
			return
		}
		filter.City = &parsed
	}
	if hours := c.Query("working_hours"); hours != "" {
		parsed, err := models.ParseWorkingHours(hours)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "working_hours", Message: err.Error()})
			return
		}
		filter.WorkingHours = &parsed
	}
	if supervisorID := c.Query("supervisor_id"); supervisorID != "" {
		id, err := strconv.ParseUint(supervisorID, 10, 32)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "supervisor_id", Message: "supervisor_id must be a number"})
			return
		}
		uid := uint(id)
		filter.SupervisorID = &uid
	}
	if from := c.Query("joined_from"); from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "joined_from", Message: "joined_from must be in YYYY-MM-DD format"})
			return
		}
		filter.JoinedFrom = &parsed
	}
	if to := c.Query("joined_to"); to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "joined_to", Message: "joined_to must be in YYYY-MM-DD format"})
			return
		}
		filter.JoinedTo = &parsed
	}
	if minAge := c.Query("min_age"); minAge != "" {
		n, err := strconv.Atoi(minAge)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "min_age", Message: "min_age must be a number"})
			return
		}
		filter.MinAge = &n
	}
	if maxAge := c.Query("max_age"); maxAge != "" {
		n, err := strconv.Atoi(maxAge)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "max_age", Message: "max_age must be a number"})
			return
		}
		filter.MaxAge = &n
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}

	members, err := teamMemberService().Filter(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

// SearchTeamMembers handles GET /api/v1/team-members/search?q=term
func SearchTeamMembers(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Search term is required",
			},
		})
		return
	}

	members, err := teamMemberService().Search(term)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

// ListUnassignedTeamMembers handles GET /api/v1/team-members/unassigned
func ListUnassignedTeamMembers(c *gin.Context) {
	members, err := teamMemberService().MembersWithoutSupervisor()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

// ListTeamMembersBySpecialization handles GET /api/v1/team-members/specialization/:specialization
func ListTeamMembersBySpecialization(c *gin.Context) {
	members, err := teamMemberService().BySpecialization(c.Param("specialization"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

// ListTeamMembersByCity handles GET /api/v1/team-members/city/:city
func ListTeamMembersByCity(c *gin.Context) {
	members, err := teamMemberService().ByCity(c.Param("city"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

// ListTeamMembersByWorkingHours handles GET /api/v1/team-members/working-hours/:hours
func ListTeamMembersByWorkingHours(c *gin.Context) {
	members, err := teamMemberService().ByWorkingHours(c.Param("hours"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

// ListTeamMembersJoinedBetween handles GET /api/v1/team-members/joined?from=YYYY-MM-DD&to=YYYY-MM-DD
func ListTeamMembersJoinedBetween(c *gin.Context) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		respondServiceError(c, &services.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
		return
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		respondServiceError(c, &services.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
		return
	}

	members, err := teamMemberService().JoinedBetween(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

// ListTeamMembersByTeam handles GET /api/v1/teams/:teamId/members
func ListTeamMembersByTeam(c *gin.Context) {
	members, err := teamMemberService().ByTeam(c.Param("teamId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

// AssignSupervisor handles PUT /api/v1/team-members/:id/supervisor (admin only)
func AssignSupervisor(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AssignSupervisorRequest
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

	member, err := teamMemberService().AssignSupervisor(id, req.SupervisorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    member,
	})
}

// RemoveSupervisor handles DELETE /api/v1/team-members/:id/supervisor (admin only)
func RemoveSupervisor(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	member, err := teamMemberService().RemoveSupervisor(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    member,
	})
}

// ListSupervisorMembers handles GET /api/v1/supervisors/:id/members - lists a
// supervisor's members ordered by full name. Supports an optional q parameter
// for supervisor-scoped free-text search.
func ListSupervisorMembers(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	svc := teamMemberService()

	var members []models.TeamMember
	var err error
	if term := c.Query("q"); term != "" {
		members, err = svc.SearchBySupervisor(id, term)
	} else {
		members, err = svc.MembersBySupervisor(id)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    members,
	})
}

// GetSupervisorMemberCount handles GET /api/v1/supervisors/:id/members/count
func GetSupervisorMemberCount(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	count, err := teamMemberService().CountBySupervisor(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"supervisor_id": id,
			"member_count":  count,
		},
	})
}

// GetSupervisorTeamCounts handles GET /api/v1/supervisors/counts
func GetSupervisorTeamCounts(c *gin.Context) {
	counts, err := teamMemberService().SupervisorTeamCounts()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    counts,
	})
}

// ListAvailableSupervisors handles GET /api/v1/supervisors/available - lists
// active supervisors below the maximum team size. The max_team_size query
// parameter overrides the configured default.
func ListAvailableSupervisors(c *gin.Context) {
	maxTeamSize := 0
	if cfg := config.GetConfig(); cfg != nil {
		maxTeamSize = cfg.MaxTeamSize
	}
	if raw := c.Query("max_team_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondServiceError(c, &services.ValidationError{Field: "max_team_size", Message: "max_team_size must be a number"})
			return
		}
		maxTeamSize = n
	}

	supervisors, err := teamMemberService().AvailableSupervisors(maxTeamSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    supervisors,
	})
}

// GetTeamMemberCount handles GET /api/v1/teams/:teamId/count
func GetTeamMemberCount(c *gin.Context) {
	teamID := c.Param("teamId")
	count, err := teamMemberService().CountByTeam(teamID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"team_id":      teamID,
			"member_count": count,
		},
	})
}
