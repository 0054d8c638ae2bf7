package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ChiraniSiriwardhana/ASMS-Backend/models"
	"gorm.io/gorm"
)

// MemberFilter is a composable filter specification for roster queries.
// Every field is optional; a nil field imposes no constraint. Set fields are
// combined with logical AND.
type MemberFilter struct {
	TeamID         *string
	Specialization *models.Specialization
	City           *models.District
	SupervisorID   *uint
	WorkingHours   *models.WorkingHours
	JoinedFrom     *time.Time
	JoinedTo       *time.Time
	MinAge         *int
	MaxAge         *int
	Search         *string
}

// apply translates the filter into a conjunction of WHERE clauses.
func (f MemberFilter) apply(q *gorm.DB) *gorm.DB {
	if f.TeamID != nil {
		q = q.Where("team_id = ?", *f.TeamID)
	}
	if f.Specialization != nil {
		q = q.Where("specialization = ?", *f.Specialization)
	}
	if f.City != nil {
		q = q.Where("city = ?", *f.City)
	}
	if f.SupervisorID != nil {
		q = q.Where("supervisor_id = ?", *f.SupervisorID)
	}
	if f.WorkingHours != nil {
		q = q.Where("working_hours_per_day = ?", *f.WorkingHours)
	}
	if f.JoinedFrom != nil {
		q = q.Where("joined_date >= ?", *f.JoinedFrom)
	}
	if f.JoinedTo != nil {
		q = q.Where("joined_date <= ?", *f.JoinedTo)
	}
	if f.MinAge != nil {
		q = q.Where("age >= ?", *f.MinAge)
	}
	if f.MaxAge != nil {
		q = q.Where("age <= ?", *f.MaxAge)
	}
	if f.Search != nil {
		term := "%" + strings.ToLower(*f.Search) + "%"
		q = q.Where(
			"LOWER(full_name) LIKE ? OR LOWER(nic) LIKE ? OR LOWER(contact_no) LIKE ? OR LOWER(address) LIKE ? OR LOWER(team_id) LIKE ?",
			term, term, term, term, term,
		)
	}
	return q
}

// SupervisorCount is one row of the per-supervisor member count aggregation.
type SupervisorCount struct {
	SupervisorID uint  `json:"supervisor_id"`
	MemberCount  int64 `json:"member_count"`
}

// TeamMemberRepository is the record store for the technician roster.
type TeamMemberRepository interface {
	// FindByID fetches a member with their supervisor preloaded. Returns (nil, nil) when absent.
	FindByID(id uint) (*models.TeamMember, error)

	// FindAll returns members matching the filter, preloading supervisors.
	FindAll(filter MemberFilter) ([]models.TeamMember, error)

	// ExistsByNIC reports whether any member holds the given identity code.
	ExistsByNIC(nic string) (bool, error)

	// ExistsByNICExcluding reports whether a member other than the given id
	// holds the identity code.
	ExistsByNICExcluding(nic string, id uint) (bool, error)

	// Save writes the full member record (insert or replace).
	Save(member *models.TeamMember) error

	// Delete removes a member by id, reporting whether a record was removed.
	Delete(id uint) (bool, error)

	// FindBySupervisor returns a supervisor's members ordered by full name.
	FindBySupervisor(supervisorID uint) ([]models.TeamMember, error)

	// FindWithoutSupervisor returns members with no supervisor assigned.
	FindWithoutSupervisor() ([]models.TeamMember, error)

	// CountBySupervisor returns the number of members under a supervisor.
	CountBySupervisor(supervisorID uint) (int64, error)

	// CountByTeam returns the number of members in a team.
	CountByTeam(teamID string) (int64, error)

	// SupervisorTeamCounts returns member counts grouped by supervisor.
	SupervisorTeamCounts() ([]SupervisorCount, error)

	// SearchBySupervisor free-text searches one supervisor's members over
	// name, NIC, contact number and team id, ordered by full name.
	SearchBySupervisor(supervisorID uint, term string) ([]models.TeamMember, error)
}

// GormTeamMemberRepository implements TeamMemberRepository on a GORM connection.
type GormTeamMemberRepository struct {
	db *gorm.DB
}

// NewTeamMemberRepository creates a TeamMemberRepository backed by the given database.
func NewTeamMemberRepository(db *gorm.DB) *GormTeamMemberRepository {
	return &GormTeamMemberRepository{db: db}
}

// FindByID fetches a member with their supervisor preloaded
func (r *GormTeamMemberRepository) FindByID(id uint) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Preload("Supervisor").First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find team member: %w", err)
	}
	return &member, nil
}

// FindAll returns members matching the filter
func (r *GormTeamMemberRepository) FindAll(filter MemberFilter) ([]models.TeamMember, error) {
	var members []models.TeamMember
	q := filter.apply(r.db.Model(&models.TeamMember{})).Preload("Supervisor")
	if err := q.Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch team members: %w", err)
	}
	return members, nil
}

// ExistsByNIC reports whether any member holds the given identity code
func (r *GormTeamMemberRepository) ExistsByNIC(nic string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.TeamMember{}).Where("nic = ?", nic).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check NIC: %w", err)
	}
	return count > 0, nil
}

// ExistsByNICExcluding reports whether a member other than the given id holds the identity code
func (r *GormTeamMemberRepository) ExistsByNICExcluding(nic string, id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.TeamMember{}).Where("nic = ? AND id <> ?", nic, id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check NIC: %w", err)
	}
	return count > 0, nil
}

// Save writes the full member record. The supervisor association is omitted;
// the roster engine never mutates user records.
func (r *GormTeamMemberRepository) Save(member *models.TeamMember) error {
	return r.db.Omit("Supervisor").Save(member).Error
}

// Delete removes a member by id, reporting whether a record was removed
func (r *GormTeamMemberRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&models.TeamMember{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete team member: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// FindBySupervisor returns a supervisor's members ordered by full name
func (r *GormTeamMemberRepository) FindBySupervisor(supervisorID uint) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.db.Where("supervisor_id = ?", supervisorID).
		Preload("Supervisor").
		Order("full_name ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch members by supervisor: %w", err)
	}
	return members, nil
}

// FindWithoutSupervisor returns members with no supervisor assigned
func (r *GormTeamMemberRepository) FindWithoutSupervisor() ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := r.db.Where("supervisor_id IS NULL").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch unassigned members: %w", err)
	}
	return members, nil
}

// CountBySupervisor returns the number of members under a supervisor
func (r *GormTeamMemberRepository) CountBySupervisor(supervisorID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.TeamMember{}).Where("supervisor_id = ?", supervisorID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count members by supervisor: %w", err)
	}
	return count, nil
}

// CountByTeam returns the number of members in a team
func (r *GormTeamMemberRepository) CountByTeam(teamID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count members by team: %w", err)
	}
	return count, nil
}

// SupervisorTeamCounts returns member counts grouped by supervisor
func (r *GormTeamMemberRepository) SupervisorTeamCounts() ([]SupervisorCount, error) {
	var counts []SupervisorCount
	if err := r.db.Model(&models.TeamMember{}).
		Select("supervisor_id, COUNT(*) AS member_count").
		Where("supervisor_id IS NOT NULL").
		Group("supervisor_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate supervisor counts: %w", err)
	}
	return counts, nil
}

// SearchBySupervisor free-text searches one supervisor's members.
// Unlike the roster-wide search, the address field is not matched.
func (r *GormTeamMemberRepository) SearchBySupervisor(supervisorID uint, term string) ([]models.TeamMember, error) {
	like := "%" + strings.ToLower(term) + "%"
	var members []models.TeamMember
	if err := r.db.Where("supervisor_id = ?", supervisorID).
		Where(
			"LOWER(full_name) LIKE ? OR LOWER(nic) LIKE ? OR LOWER(contact_no) LIKE ? OR LOWER(team_id) LIKE ?",
			like, like, like, like,
		).
		Order("full_name ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to search members by supervisor: %w", err)
	}
	return members, nil
}
