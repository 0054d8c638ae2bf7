package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/models"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.TeamMember{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func seedSupervisor(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Name:     username,
		Email:    username + "@example.com",
		Role:     models.RoleSupervisor,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed supervisor: %v", err)
	}
	return user
}

func seedMember(t *testing.T, db *gorm.DB, member models.TeamMember) *models.TeamMember {
	t.Helper()
	if member.ContactNo == "" {
		member.ContactNo = "0770000000"
	}
	if member.BirthDate.IsZero() {
		member.BirthDate = time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if member.Address == "" {
		member.Address = "1 Station Road, Colombo"
	}
	if member.City == "" {
		member.City = models.Colombo
	}
	if member.Specialization == "" {
		member.Specialization = models.Engine
	}
	if member.JoinedDate.IsZero() {
		member.JoinedDate = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if member.WorkingHoursPerDay == "" {
		member.WorkingHoursPerDay = models.HoursEight
	}
	if member.TeamID == "" {
		member.TeamID = "TEAM-A"
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("Failed to seed member %s: %v", member.FullName, err)
	}
	return &member
}

func TestMemberFilter(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewTeamMemberRepository(db)
	supervisor := seedSupervisor(t, db, "lead")

	seedMember(t, db, models.TeamMember{
		FullName: "Amara Jaya", NIC: "200000000001", Age: 29,
		City: models.Galle, Specialization: models.Brakes,
		JoinedDate:         time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
		WorkingHoursPerDay: models.HoursSix,
		TeamID:             "TEAM-B", SupervisorID: &supervisor.ID,
	})
	seedMember(t, db, models.TeamMember{
		FullName: "Bandu Kumara", NIC: "200000000002", Age: 41,
		City: models.Kandy, Specialization: models.Engine,
		JoinedDate: time.Date(2023, time.February, 10, 0, 0, 0, 0, time.UTC),
		TeamID:     "TEAM-A",
	})
	seedMember(t, db, models.TeamMember{
		FullName: "Chamari Silva", NIC: "200000000003", Age: 35,
		Address: "9 Beach Road, Galle",
		City:    models.Galle, Specialization: models.Electrical,
		JoinedDate:         time.Date(2022, time.September, 5, 0, 0, 0, 0, time.UTC),
		WorkingHoursPerDay: models.HoursTwelve,
		TeamID:             "TEAM-A",
	})

	names := func(members []models.TeamMember) []string {
		out := make([]string, 0, len(members))
		for _, m := range members {
			out = append(out, m.FullName)
		}
		return out
	}

	t.Run("Empty filter returns everything", func(t *testing.T) {
		members, err := repo.FindAll(MemberFilter{})
		assert.NoError(t, err)
		assert.Len(t, members, 3)
	})

	t.Run("Single field filters", func(t *testing.T) {
		galle := models.Galle
		brakes := models.Brakes
		six := models.HoursSix
		teamA := "TEAM-A"
		minAge, maxAge := 30, 45
		from := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC)

		tests := []struct {
			name   string
			filter MemberFilter
			want   []string
		}{
			{name: "By city", filter: MemberFilter{City: &galle}, want: []string{"Amara Jaya", "Chamari Silva"}},
			{name: "By specialization", filter: MemberFilter{Specialization: &brakes}, want: []string{"Amara Jaya"}},
			{name: "By working hours", filter: MemberFilter{WorkingHours: &six}, want: []string{"Amara Jaya"}},
			{name: "By team", filter: MemberFilter{TeamID: &teamA}, want: []string{"Bandu Kumara", "Chamari Silva"}},
			{name: "By supervisor", filter: MemberFilter{SupervisorID: &supervisor.ID}, want: []string{"Amara Jaya"}},
			{name: "By age range", filter: MemberFilter{MinAge: &minAge, MaxAge: &maxAge}, want: []string{"Bandu Kumara", "Chamari Silva"}},
			{name: "By joined range", filter: MemberFilter{JoinedFrom: &from, JoinedTo: &to}, want: []string{"Chamari Silva"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				members, err := repo.FindAll(tt.filter)
				assert.NoError(t, err)
				assert.ElementsMatch(t, tt.want, names(members))
			})
		}
	})

	t.Run("Conjunction of fields", func(t *testing.T) {
		galle := models.Galle
		electrical := models.Electrical
		members, err := repo.FindAll(MemberFilter{City: &galle, Specialization: &electrical})
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"Chamari Silva"}, names(members))
	})

	t.Run("No matching value yields an empty result", func(t *testing.T) {
		matara := models.Matara
		members, err := repo.FindAll(MemberFilter{City: &matara})
		assert.NoError(t, err)
		assert.Empty(t, members)
	})

	t.Run("Search spans name NIC contact address and team", func(t *testing.T) {
		tests := []struct {
			term string
			want []string
		}{
			{term: "amara", want: []string{"Amara Jaya"}},
			{term: "200000000002", want: []string{"Bandu Kumara"}},
			{term: "beach road", want: []string{"Chamari Silva"}},
			{term: "team-a", want: []string{"Bandu Kumara", "Chamari Silva"}},
			{term: "nobody", want: []string{}},
		}
		for _, tt := range tests {
			term := tt.term
			members, err := repo.FindAll(MemberFilter{Search: &term})
			assert.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(members))
		}
	})
}

func TestNICLookups(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewTeamMemberRepository(db)

	member := seedMember(t, db, models.TeamMember{FullName: "Nimal Perera", NIC: "300000000001", Age: 30})

	exists, err := repo.ExistsByNIC("300000000001")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNIC("300000000099")
	assert.NoError(t, err)
	assert.False(t, exists)

	taken, err := repo.ExistsByNICExcluding("300000000001", member.ID)
	assert.NoError(t, err)
	assert.False(t, taken, "a member's own NIC is not a conflict against themselves")

	taken, err = repo.ExistsByNICExcluding("300000000001", member.ID+1)
	assert.NoError(t, err)
	assert.True(t, taken)
}

func TestTeamMemberDelete(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewTeamMemberRepository(db)

	member := seedMember(t, db, models.TeamMember{FullName: "Nimal Perera", NIC: "400000000001", Age: 30})

	removed, err := repo.Delete(member.ID)
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(member.ID)
	assert.NoError(t, err)
	assert.False(t, removed)

	found, err := repo.FindByID(member.ID)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestSupervisorScopedQueries(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewTeamMemberRepository(db)
	supervisor := seedSupervisor(t, db, "lead")
	other := seedSupervisor(t, db, "other")

	seedMember(t, db, models.TeamMember{
		FullName: "Bandu Kumara", NIC: "500000000001", Age: 40,
		Address: "7 Temple Lane, Galle", SupervisorID: &supervisor.ID,
	})
	seedMember(t, db, models.TeamMember{
		FullName: "Amara Jaya", NIC: "500000000002", Age: 28,
		SupervisorID: &supervisor.ID,
	})
	seedMember(t, db, models.TeamMember{
		FullName: "Chamari Silva", NIC: "500000000003", Age: 33,
		SupervisorID: &other.ID,
	})
	seedMember(t, db, models.TeamMember{
		FullName: "Dil Perera", NIC: "500000000004", Age: 45,
	})

	t.Run("FindBySupervisor orders by full name", func(t *testing.T) {
		members, err := repo.FindBySupervisor(supervisor.ID)
		assert.NoError(t, err)
		assert.Len(t, members, 2)
		assert.Equal(t, "Amara Jaya", members[0].FullName)
		assert.Equal(t, "Bandu Kumara", members[1].FullName)
	})

	t.Run("FindWithoutSupervisor", func(t *testing.T) {
		members, err := repo.FindWithoutSupervisor()
		assert.NoError(t, err)
		assert.Len(t, members, 1)
		assert.Equal(t, "Dil Perera", members[0].FullName)
	})

	t.Run("Counts", func(t *testing.T) {
		count, err := repo.CountBySupervisor(supervisor.ID)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)

		count, err = repo.CountByTeam("TEAM-A")
		assert.NoError(t, err)
		assert.Equal(t, int64(4), count)

		counts, err := repo.SupervisorTeamCounts()
		assert.NoError(t, err)
		assert.Len(t, counts, 2, "unassigned members are not aggregated")
	})

	t.Run("SearchBySupervisor does not match addresses", func(t *testing.T) {
		members, err := repo.SearchBySupervisor(supervisor.ID, "temple")
		assert.NoError(t, err)
		assert.Empty(t, members)

		members, err = repo.SearchBySupervisor(supervisor.ID, "a")
		assert.NoError(t, err)
		assert.Len(t, members, 2)
		assert.Equal(t, "Amara Jaya", members[0].FullName, "results are ordered by full name")

		members, err = repo.SearchBySupervisor(supervisor.ID, "chamari")
		assert.NoError(t, err)
		assert.Empty(t, members, "other supervisors' members are out of scope")
	})
}
