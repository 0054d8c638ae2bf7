package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/config"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/models"
)

func setupTeamMemberTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Auto-migrate the User and TeamMember models
	if err := db.AutoMigrate(&models.User{}, &models.TeamMember{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createRosterUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Name:     username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func validTeamMemberBody() map[string]interface{} {
	return map[string]interface{}{
		"full_name":             "Nimal Perera",
		"nic":                   "123456789012",
		"contact_no":            "0771234567",
		"birth_date":            "1995-04-20",
		"address":               "12 Main Street, Colombo",
		"city":                  "COLOMBO",
		"specialization":        "ENGINE",
		"joined_date":           "2022-03-01",
		"working_hours_per_day": "8",
		"team_id":               "TEAM-A",
	}
}

func performJSON(router *gin.Engine, method, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateTeamMemberEndpoint(t *testing.T) {
	// Setup
	db := setupTeamMemberTestDB(t)
	config.SetDB(db)

	admin := createRosterUser(t, db, "auth0|admin", models.RoleAdmin)
	customer := createRosterUser(t, db, "auth0|customer", models.RoleCustomer)

	tests := []struct {
		name           string
		username       string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Admin creates a roster member",
			username:       admin.Username,
			requestBody:    validTeamMemberBody(),
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "Nimal Perera", data["full_name"])
				assert.Equal(t, "123456789012", data["nic"])
				assert.NotZero(t, data["age"], "age is derived from the birth date")
			},
		},
		{
			name:           "Non-admin is forbidden",
			username:       customer.Username,
			requestBody:    validTeamMemberBody(),
			expectedStatus: http.StatusForbidden,
			expectedError:  "FORBIDDEN",
		},
		{
			name:     "Duplicate NIC is a conflict",
			username: admin.Username,
			requestBody: func() map[string]interface{} {
				body := validTeamMemberBody()
				body["full_name"] = "Sunil Fernando"
				return body
			}(),
			expectedStatus: http.StatusConflict,
			expectedError:  "CONFLICT",
		},
		{
			name:     "Malformed NIC fails validation",
			username: admin.Username,
			requestBody: func() map[string]interface{} {
				body := validTeamMemberBody()
				body["nic"] = "12AB"
				return body
			}(),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:     "Malformed birth date is rejected",
			username: admin.Username,
			requestBody: func() map[string]interface{} {
				body := validTeamMemberBody()
				body["birth_date"] = "20-04-1995"
				return body
			}(),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:     "Missing required field is rejected",
			username: admin.Username,
			requestBody: func() map[string]interface{} {
				body := validTeamMemberBody()
				delete(body, "team_id")
				return body
			}(),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/team-members",
				mockAuthMiddleware(tt.username, "", "mock-token"),
				CreateTeamMember,
			)

			w := performJSON(router, http.MethodPost, "/team-members", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}

			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestUpdateAndDeleteTeamMemberEndpoints(t *testing.T) {
	// Setup
	db := setupTeamMemberTestDB(t)
	config.SetDB(db)

	admin := createRosterUser(t, db, "auth0|admin", models.RoleAdmin)

	router := setupTestRouter()
	auth := mockAuthMiddleware(admin.Username, "", "mock-token")
	router.POST("/team-members", auth, CreateTeamMember)
	router.PUT("/team-members/:id", auth, UpdateTeamMember)
	router.DELETE("/team-members/:id", auth, DeleteTeamMember)
	router.GET("/team-members/:id", GetTeamMember)

	// Create the member to work with
	w := performJSON(router, http.MethodPost, "/team-members", validTeamMemberBody())
	assert.Equal(t, http.StatusCreated, w.Code)

	t.Run("Update keeps the same NIC without conflict", func(t *testing.T) {
		body := validTeamMemberBody()
		body["address"] = "45 Lake Road, Kandy"
		body["city"] = "KANDY"

		w := performJSON(router, http.MethodPut, "/team-members/1", body)
		assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "KANDY", data["city"])
	})

	t.Run("Updating a missing member yields 404", func(t *testing.T) {
		w := performJSON(router, http.MethodPut, "/team-members/99999", validTeamMemberBody())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete reports whether a record was removed", func(t *testing.T) {
		w := performJSON(router, http.MethodDelete, "/team-members/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		assert.True(t, data["deleted"].(bool))

		// Deleting again is not an error
		w = performJSON(router, http.MethodDelete, "/team-members/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		json.Unmarshal(w.Body.Bytes(), &response)
		data = response["data"].(map[string]interface{})
		assert.False(t, data["deleted"].(bool))
	})

	t.Run("Fetching the deleted member yields 404", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/team-members/1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListTeamMembersEndpoint(t *testing.T) {
	// Setup
	db := setupTeamMemberTestDB(t)
	config.SetDB(db)

	supervisor := createRosterUser(t, db, "auth0|super", models.RoleSupervisor)

	members := []models.TeamMember{
		{
			FullName: "Amara Jaya", NIC: "100000000001", ContactNo: "0711111111",
			BirthDate: date(1995, 5, 10), Age: 29, Address: "7 Temple Lane, Galle",
			City: models.Galle, Specialization: models.Brakes,
			JoinedDate: date(2021, 6, 1), WorkingHoursPerDay: models.HoursSix,
			TeamID: "TEAM-B", SupervisorID: &supervisor.ID,
		},
		{
			FullName: "Bandu Kumara", NIC: "100000000002", ContactNo: "0722222222",
			BirthDate: date(1983, 2, 1), Age: 41, Address: "3 Hill Street, Kandy",
			City: models.Kandy, Specialization: models.Engine,
			JoinedDate: date(2023, 2, 10), WorkingHoursPerDay: models.HoursEight,
			TeamID: "TEAM-A",
		},
	}
	for i := range members {
		if err := db.Create(&members[i]).Error; err != nil {
			t.Fatalf("Failed to seed member: %v", err)
		}
	}

	router := setupTestRouter()
	router.GET("/team-members", ListTeamMembers)
	router.GET("/team-members/search", SearchTeamMembers)
	router.GET("/team-members/unassigned", ListUnassignedTeamMembers)

	listNames := func(t *testing.T, path string) []string {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].([]interface{})
		names := make([]string, 0, len(data))
		for _, item := range data {
			names = append(names, item.(map[string]interface{})["full_name"].(string))
		}
		return names
	}

	t.Run("No filters returns the full roster", func(t *testing.T) {
		assert.Len(t, listNames(t, "/team-members"), 2)
	})

	t.Run("Query parameters compose as a conjunction", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Amara Jaya"}, listNames(t, "/team-members?city=GALLE&specialization=BRAKES"))
		assert.ElementsMatch(t, []string{"Bandu Kumara"}, listNames(t, "/team-members?team_id=TEAM-A"))
		assert.ElementsMatch(t, []string{"Bandu Kumara"}, listNames(t, "/team-members?min_age=30&max_age=50"))
		assert.ElementsMatch(t, []string{"Amara Jaya"}, listNames(t, "/team-members?joined_from=2021-01-01&joined_to=2021-12-31"))
		assert.Empty(t, listNames(t, "/team-members?city=MATARA"))
	})

	t.Run("Unknown enum value yields 400", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/team-members?city=ATLANTIS", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Search endpoint requires a term", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/team-members/search", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Search matches across fields", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Amara Jaya"}, listNames(t, "/team-members/search?q=temple"))
		assert.ElementsMatch(t, []string{"Bandu Kumara"}, listNames(t, "/team-members/search?q=100000000002"))
	})

	t.Run("Unassigned members", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Bandu Kumara"}, listNames(t, "/team-members/unassigned"))
	})
}

func TestDedicatedListingEndpoints(t *testing.T) {
	// Setup
	db := setupTeamMemberTestDB(t)
	config.SetDB(db)

	members := []models.TeamMember{
		{
			FullName: "Amara Jaya", NIC: "200000000001", ContactNo: "0711111111",
			BirthDate: date(1995, 5, 10), Age: 29, Address: "7 Temple Lane, Galle",
			City: models.Galle, Specialization: models.Brakes,
			JoinedDate: date(2021, 6, 1), WorkingHoursPerDay: models.HoursSix,
			TeamID: "TEAM-B",
		},
		{
			FullName: "Bandu Kumara", NIC: "200000000002", ContactNo: "0722222222",
			BirthDate: date(1983, 2, 1), Age: 41, Address: "3 Hill Street, Kandy",
			City: models.Kandy, Specialization: models.Engine,
			JoinedDate: date(2023, 2, 10), WorkingHoursPerDay: models.HoursEight,
			TeamID: "TEAM-A",
		},
	}
	for i := range members {
		if err := db.Create(&members[i]).Error; err != nil {
			t.Fatalf("Failed to seed member: %v", err)
		}
	}

	router := setupTestRouter()
	router.GET("/team-members/specialization/:specialization", ListTeamMembersBySpecialization)
	router.GET("/team-members/city/:city", ListTeamMembersByCity)
	router.GET("/team-members/working-hours/:hours", ListTeamMembersByWorkingHours)
	router.GET("/team-members/joined", ListTeamMembersJoinedBetween)
	router.GET("/teams/:teamId/members", ListTeamMembersByTeam)

	listNames := func(t *testing.T, path string) []string {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].([]interface{})
		names := make([]string, 0, len(data))
		for _, item := range data {
			names = append(names, item.(map[string]interface{})["full_name"].(string))
		}
		return names
	}

	t.Run("By specialization", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Amara Jaya"}, listNames(t, "/team-members/specialization/BRAKES"))
	})

	t.Run("By city", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Bandu Kumara"}, listNames(t, "/team-members/city/KANDY"))
		assert.Empty(t, listNames(t, "/team-members/city/MATARA"))
	})

	t.Run("By working hours", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Amara Jaya"}, listNames(t, "/team-members/working-hours/6"))
	})

	t.Run("Joined within a date range", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Bandu Kumara"}, listNames(t, "/team-members/joined?from=2023-01-01&to=2023-12-31"))
	})

	t.Run("Members of a team", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Bandu Kumara"}, listNames(t, "/teams/TEAM-A/members"))
	})

	t.Run("Unknown enum value yields 400", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/team-members/specialization/PAINTING", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Malformed date range yields 400", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/team-members/joined?from=bad&to=2023-12-31", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSupervisorEndpoints(t *testing.T) {
	// Setup
	db := setupTeamMemberTestDB(t)
	config.SetDB(db)

	admin := createRosterUser(t, db, "auth0|admin", models.RoleAdmin)
	superA := createRosterUser(t, db, "auth0|superA", models.RoleSupervisor)
	superB := createRosterUser(t, db, "auth0|superB", models.RoleSupervisor)

	members := []models.TeamMember{
		{
			FullName: "Bandu Kumara", NIC: "100000000001", ContactNo: "0711111111",
			BirthDate: date(1983, 2, 1), Age: 41, Address: "3 Hill Street, Kandy",
			City: models.Kandy, Specialization: models.Engine,
			JoinedDate: date(2023, 2, 10), WorkingHoursPerDay: models.HoursEight,
			TeamID: "TEAM-A", SupervisorID: &superA.ID,
		},
		{
			FullName: "Amara Jaya", NIC: "100000000002", ContactNo: "0722222222",
			BirthDate: date(1995, 5, 10), Age: 29, Address: "7 Temple Lane, Galle",
			City: models.Galle, Specialization: models.Brakes,
			JoinedDate: date(2021, 6, 1), WorkingHoursPerDay: models.HoursSix,
			TeamID: "TEAM-A", SupervisorID: &superA.ID,
		},
		{
			FullName: "Chamari Silva", NIC: "100000000003", ContactNo: "0733333333",
			BirthDate: date(1989, 9, 9), Age: 35, Address: "9 Beach Road, Galle",
			City: models.Galle, Specialization: models.Electrical,
			JoinedDate: date(2022, 9, 5), WorkingHoursPerDay: models.HoursTwelve,
			TeamID: "TEAM-B",
		},
	}
	for i := range members {
		if err := db.Create(&members[i]).Error; err != nil {
			t.Fatalf("Failed to seed member: %v", err)
		}
	}

	router := setupTestRouter()
	auth := mockAuthMiddleware(admin.Username, "", "mock-token")
	router.PUT("/team-members/:id/supervisor", auth, AssignSupervisor)
	router.DELETE("/team-members/:id/supervisor", auth, RemoveSupervisor)
	router.GET("/supervisors/available", ListAvailableSupervisors)
	router.GET("/supervisors/counts", GetSupervisorTeamCounts)
	router.GET("/supervisors/:id/members", ListSupervisorMembers)
	router.GET("/supervisors/:id/members/count", GetSupervisorMemberCount)
	router.GET("/teams/:teamId/count", GetTeamMemberCount)

	getJSON := func(t *testing.T, path string) map[string]interface{} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		return response
	}

	t.Run("Supervisor members are ordered by full name", func(t *testing.T) {
		response := getJSON(t, "/supervisors/"+itoa(superA.ID)+"/members")
		data := response["data"].([]interface{})
		assert.Len(t, data, 2)
		assert.Equal(t, "Amara Jaya", data[0].(map[string]interface{})["full_name"])
		assert.Equal(t, "Bandu Kumara", data[1].(map[string]interface{})["full_name"])
	})

	t.Run("Supervisor-scoped search", func(t *testing.T) {
		response := getJSON(t, "/supervisors/"+itoa(superA.ID)+"/members?q=amara")
		data := response["data"].([]interface{})
		assert.Len(t, data, 1)

		// Address matches are excluded in this scope
		response = getJSON(t, "/supervisors/"+itoa(superA.ID)+"/members?q=temple")
		assert.Empty(t, response["data"].([]interface{}))
	})

	t.Run("Member count per supervisor", func(t *testing.T) {
		response := getJSON(t, "/supervisors/"+itoa(superA.ID)+"/members/count")
		data := response["data"].(map[string]interface{})
		assert.Equal(t, float64(2), data["member_count"])
	})

	t.Run("Counts aggregation covers assigned supervisors only", func(t *testing.T) {
		response := getJSON(t, "/supervisors/counts")
		data := response["data"].([]interface{})
		assert.Len(t, data, 1)
		row := data[0].(map[string]interface{})
		assert.Equal(t, float64(superA.ID), row["supervisor_id"])
		assert.Equal(t, float64(2), row["member_count"])
	})

	t.Run("Available supervisors honors the max team size", func(t *testing.T) {
		response := getJSON(t, "/supervisors/available?max_team_size=2")
		data := response["data"].([]interface{})
		assert.Len(t, data, 1, "a supervisor with 2 members is at capacity")
		assert.Equal(t, superB.Username, data[0].(map[string]interface{})["username"])

		response = getJSON(t, "/supervisors/available?max_team_size=5")
		assert.Len(t, response["data"].([]interface{}), 2)
	})

	t.Run("Team member count", func(t *testing.T) {
		response := getJSON(t, "/teams/TEAM-A/count")
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "TEAM-A", data["team_id"])
		assert.Equal(t, float64(2), data["member_count"])
	})

	t.Run("Assign and remove a supervisor", func(t *testing.T) {
		memberID := itoa(members[2].ID)

		w := performJSON(router, http.MethodPut, "/team-members/"+memberID+"/supervisor",
			map[string]interface{}{"supervisor_id": superB.ID})
		assert.Equal(t, http.StatusOK, w.Code, "Response body: %s", w.Body.String())

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, float64(superB.ID), data["supervisor_id"])

		w = performJSON(router, http.MethodDelete, "/team-members/"+memberID+"/supervisor", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		json.Unmarshal(w.Body.Bytes(), &response)
		data = response["data"].(map[string]interface{})
		assert.Nil(t, data["supervisor_id"])
	})

	t.Run("Assigning a non-supervisor fails validation", func(t *testing.T) {
		memberID := itoa(members[2].ID)
		w := performJSON(router, http.MethodPut, "/team-members/"+memberID+"/supervisor",
			map[string]interface{}{"supervisor_id": admin.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
