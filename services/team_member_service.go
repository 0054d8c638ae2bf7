package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/models"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/repositories"
	"github.com/ChiraniSiriwardhana/ASMS-Backend/utils"
)

// TeamMemberInput carries the submitted fields for creating or updating a
// roster member. Enum fields arrive as raw strings and are parsed fallibly.
type TeamMemberInput struct {
	FullName           string
	NIC                string
	ContactNo          string
	BirthDate          time.Time
	Address            string
	City               string
	Specialization     string
	JoinedDate         time.Time
	WorkingHoursPerDay string
	TeamID             string
	SupervisorID       *uint
}

// TeamMemberService owns the roster consistency rules: identity uniqueness,
// eligibility validation, derived age, and supervisor relationship integrity.
type TeamMemberService struct {
	members repositories.TeamMemberRepository
	users   repositories.UserRepository
	now     func() time.Time
}

// NewTeamMemberService creates a TeamMemberService over the given stores.
func NewTeamMemberService(members repositories.TeamMemberRepository, users repositories.UserRepository) *TeamMemberService {
	return &TeamMemberService{members: members, users: users, now: time.Now}
}

// Create validates and persists a new roster member. The operation is
// all-or-nothing: any failed step aborts before persistence.
func (s *TeamMemberService) Create(input TeamMemberInput) (*models.TeamMember, error) {
	now := s.now()
	member, err := s.buildMember(input, now)
	if err != nil {
		return nil, err
	}

	exists, err := s.members.ExistsByNIC(member.NIC)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &ConflictError{Message: fmt.Sprintf("Team member with NIC %s already exists", member.NIC)}
	}

	supervisor, err := s.resolveSupervisor(input.SupervisorID)
	if err != nil {
		return nil, err
	}
	member.SupervisorID = input.SupervisorID
	member.Supervisor = supervisor

	if err := s.members.Save(member); err != nil {
		// The unique index is the final arbiter; a concurrent create with the
		// same NIC surfaces as the same conflict the pre-check produces.
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: fmt.Sprintf("Team member with NIC %s already exists", member.NIC)}
		}
		return nil, fmt.Errorf("failed to create team member: %w", err)
	}
	return member, nil
}

// Update validates and persists changes to an existing member. A member may
// keep their own NIC; the uniqueness check excludes their own record.
func (s *TeamMemberService) Update(id uint, input TeamMemberInput) (*models.TeamMember, error) {
	existing, err := s.members.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Resource: "team_member", Message: "Team member not found"}
	}

	now := s.now()
	member, err := s.buildMember(input, now)
	if err != nil {
		return nil, err
	}

	taken, err := s.members.ExistsByNICExcluding(member.NIC, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Message: fmt.Sprintf("Team member with NIC %s already exists", member.NIC)}
	}

	supervisor, err := s.resolveSupervisor(input.SupervisorID)
	if err != nil {
		return nil, err
	}

	member.ID = id
	member.CreatedAt = existing.CreatedAt // preserve creation timestamp
	member.SupervisorID = input.SupervisorID
	member.Supervisor = supervisor

	if err := s.members.Save(member); err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: fmt.Sprintf("Team member with NIC %s already exists", member.NIC)}
		}
		return nil, fmt.Errorf("failed to update team member: %w", err)
	}
	return member, nil
}

// Delete removes a member, reporting whether a record was actually removed.
// Deleting an absent member is not an error.
func (s *TeamMemberService) Delete(id uint) (bool, error) {
	return s.members.Delete(id)
}

// Get fetches a single member by id.
func (s *TeamMemberService) Get(id uint) (*models.TeamMember, error) {
	member, err := s.members.FindByID(id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &NotFoundError{Resource: "team_member", Message: "Team member not found"}
	}
	return member, nil
}

// List returns the full roster.
func (s *TeamMemberService) List() ([]models.TeamMember, error) {
	return s.members.FindAll(repositories.MemberFilter{})
}

// Filter returns members matching the composable filter specification.
func (s *TeamMemberService) Filter(filter repositories.MemberFilter) ([]models.TeamMember, error) {
	return s.members.FindAll(filter)
}

// Search free-text searches the roster over name, NIC, contact number,
// address and team id.
func (s *TeamMemberService) Search(term string) ([]models.TeamMember, error) {
	return s.members.FindAll(repositories.MemberFilter{Search: &term})
}

// SearchBySupervisor restricts the free-text search to one supervisor's
// members. The address field is not matched in this scope.
func (s *TeamMemberService) SearchBySupervisor(supervisorID uint, term string) ([]models.TeamMember, error) {
	return s.members.SearchBySupervisor(supervisorID, term)
}

// BySpecialization lists members with the given skill area.
func (s *TeamMemberService) BySpecialization(specialization string) ([]models.TeamMember, error) {
	spec, err := models.ParseSpecialization(specialization)
	if err != nil {
		return nil, &ValidationError{Field: "specialization", Message: err.Error()}
	}
	return s.members.FindAll(repositories.MemberFilter{Specialization: &spec})
}

// ByCity lists members based in the given district.
func (s *TeamMemberService) ByCity(city string) ([]models.TeamMember, error) {
	district, err := models.ParseDistrict(city)
	if err != nil {
		return nil, &ValidationError{Field: "city", Message: err.Error()}
	}
	return s.members.FindAll(repositories.MemberFilter{City: &district})
}

// ByWorkingHours lists members in the given working-hours category.
func (s *TeamMemberService) ByWorkingHours(hours string) ([]models.TeamMember, error) {
	wh, err := models.ParseWorkingHours(hours)
	if err != nil {
		return nil, &ValidationError{Field: "working_hours_per_day", Message: err.Error()}
	}
	return s.members.FindAll(repositories.MemberFilter{WorkingHours: &wh})
}

// ByTeam lists members in the given team.
func (s *TeamMemberService) ByTeam(teamID string) ([]models.TeamMember, error) {
	return s.members.FindAll(repositories.MemberFilter{TeamID: &teamID})
}

// JoinedBetween lists members who joined within the date range, inclusive.
func (s *TeamMemberService) JoinedBetween(start, end time.Time) ([]models.TeamMember, error) {
	return s.members.FindAll(repositories.MemberFilter{JoinedFrom: &start, JoinedTo: &end})
}

// ByAgeRange lists members whose derived age lies within [minAge, maxAge].
func (s *TeamMemberService) ByAgeRange(minAge, maxAge int) ([]models.TeamMember, error) {
	return s.members.FindAll(repositories.MemberFilter{MinAge: &minAge, MaxAge: &maxAge})
}

// AssignSupervisor sets or replaces the supervisor reference on a member.
func (s *TeamMemberService) AssignSupervisor(memberID, supervisorID uint) (*models.TeamMember, error) {
	member, err := s.members.FindByID(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &NotFoundError{Resource: "team_member", Message: "Team member not found"}
	}

	supervisor, err := s.resolveSupervisor(&supervisorID)
	if err != nil {
		return nil, err
	}

	member.SupervisorID = &supervisorID
	member.Supervisor = supervisor
	if err := s.members.Save(member); err != nil {
		return nil, fmt.Errorf("failed to assign supervisor: %w", err)
	}
	return member, nil
}

// RemoveSupervisor clears the supervisor reference on a member.
func (s *TeamMemberService) RemoveSupervisor(memberID uint) (*models.TeamMember, error) {
	member, err := s.members.FindByID(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, &NotFoundError{Resource: "team_member", Message: "Team member not found"}
	}

	member.SupervisorID = nil
	member.Supervisor = nil
	if err := s.members.Save(member); err != nil {
		return nil, fmt.Errorf("failed to remove supervisor: %w", err)
	}
	return member, nil
}

// MembersBySupervisor lists a supervisor's members, ordered by full name.
func (s *TeamMemberService) MembersBySupervisor(supervisorID uint) ([]models.TeamMember, error) {
	return s.members.FindBySupervisor(supervisorID)
}

// MembersWithoutSupervisor lists members with no supervisor assigned.
func (s *TeamMemberService) MembersWithoutSupervisor() ([]models.TeamMember, error) {
	return s.members.FindWithoutSupervisor()
}

// CountBySupervisor returns the number of members under a supervisor.
func (s *TeamMemberService) CountBySupervisor(supervisorID uint) (int64, error) {
	return s.members.CountBySupervisor(supervisorID)
}

// CountByTeam returns the number of members in a team.
func (s *TeamMemberService) CountByTeam(teamID string) (int64, error) {
	return s.members.CountByTeam(teamID)
}

// SupervisorTeamCounts returns member counts grouped by supervisor. Computed
// on demand; never cached.
func (s *TeamMemberService) SupervisorTeamCounts() ([]repositories.SupervisorCount, error) {
	return s.members.SupervisorTeamCounts()
}

// AvailableSupervisors returns active supervisor users whose current member
// count is below maxTeamSize.
func (s *TeamMemberService) AvailableSupervisors(maxTeamSize int) ([]models.User, error) {
	if maxTeamSize < 1 {
		return nil, &ValidationError{Field: "max_team_size", Message: "Maximum team size must be at least 1"}
	}

	supervisors, err := s.users.FindActiveByRole(models.RoleSupervisor)
	if err != nil {
		return nil, err
	}

	counts, err := s.members.SupervisorTeamCounts()
	if err != nil {
		return nil, err
	}
	countByID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByID[c.SupervisorID] = c.MemberCount
	}

	available := make([]models.User, 0, len(supervisors))
	for _, supervisor := range supervisors {
		if countByID[supervisor.ID] < int64(maxTeamSize) {
			available = append(available, supervisor)
		}
	}
	return available, nil
}

// buildMember runs the full validation pipeline and constructs the record,
// computing the derived age from the birth date and now.
func (s *TeamMemberService) buildMember(input TeamMemberInput, now time.Time) (*models.TeamMember, error) {
	if err := ValidateFullName(input.FullName); err != nil {
		return nil, err
	}
	if err := ValidateNIC(strings.TrimSpace(input.NIC)); err != nil {
		return nil, err
	}
	if err := ValidateContactNo(input.ContactNo); err != nil {
		return nil, err
	}
	if err := ValidateBirthDate(input.BirthDate, now); err != nil {
		return nil, err
	}
	if err := ValidateAddress(input.Address); err != nil {
		return nil, err
	}
	if err := ValidateJoinedDate(input.JoinedDate, now); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.TeamID) == "" {
		return nil, &ValidationError{Field: "team_id", Message: "Team ID is required"}
	}

	city, err := models.ParseDistrict(input.City)
	if err != nil {
		return nil, &ValidationError{Field: "city", Message: err.Error()}
	}
	specialization, err := models.ParseSpecialization(input.Specialization)
	if err != nil {
		return nil, &ValidationError{Field: "specialization", Message: err.Error()}
	}
	workingHours, err := models.ParseWorkingHours(input.WorkingHoursPerDay)
	if err != nil {
		return nil, &ValidationError{Field: "working_hours_per_day", Message: err.Error()}
	}

	return &models.TeamMember{
		FullName:           strings.TrimSpace(input.FullName),
		NIC:                strings.TrimSpace(input.NIC),
		ContactNo:          input.ContactNo,
		BirthDate:          input.BirthDate,
		Age:                utils.Age(input.BirthDate, now),
		Address:            strings.TrimSpace(input.Address),
		City:               city,
		Specialization:     specialization,
		JoinedDate:         input.JoinedDate,
		WorkingHoursPerDay: workingHours,
		TeamID:             input.TeamID,
	}, nil
}

// resolveSupervisor resolves an optional supervisor reference against the
// user store. A nil id clears the reference.
func (s *TeamMemberService) resolveSupervisor(id *uint) (*models.User, error) {
	if id == nil {
		return nil, nil
	}
	user, err := s.users.FindByID(*id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "supervisor", Message: fmt.Sprintf("Supervisor not found with ID: %d", *id)}
	}
	if user.Role != models.RoleSupervisor || !user.IsActive {
		return nil, &ValidationError{Field: "supervisor_id", Message: "User is not an active supervisor"}
	}
	return user, nil
}

// isUniqueViolation detects a uniqueness constraint error from the store
// (works with both PostgreSQL and SQLite).
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
