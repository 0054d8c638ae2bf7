package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// District is the fixed set of locations a team member can be based in.
type District string

const (
	Ampara       District = "AMPARA"
	Anuradhapura District = "ANURADHAPURA"
	Badulla      District = "BADULLA"
	Batticaloa   District = "BATTICALOA"
	Colombo      District = "COLOMBO"
	Galle        District = "GALLE"
	Gampaha      District = "GAMPAHA"
	Hambantota   District = "HAMBANTOTA"
	Jaffna       District = "JAFFNA"
	Kalutara     District = "KALUTARA"
	Kandy        District = "KANDY"
	Kegalle      District = "KEGALLE"
	Kilinochchi  District = "KILINOCHCHI"
	Kurunegala   District = "KURUNEGALA"
	Mannar       District = "MANNAR"
	Matale       District = "MATALE"
	Matara       District = "MATARA"
	Moneragala   District = "MONERAGALA"
	Mullaitivu   District = "MULLAITIVU"
	NuwaraEliya  District = "NUWARA_ELIYA"
	Polonnaruwa  District = "POLONNARUWA"
	Puttalam     District = "PUTTALAM"
	Ratnapura    District = "RATNAPURA"
	Trincomalee  District = "TRINCOMALEE"
	Vavuniya     District = "VAVUNIYA"
)

var districts = map[District]bool{
	Ampara: true, Anuradhapura: true, Badulla: true, Batticaloa: true,
	Colombo: true, Galle: true, Gampaha: true, Hambantota: true, Jaffna: true,
	Kalutara: true, Kandy: true, Kegalle: true, Kilinochchi: true,
	Kurunegala: true, Mannar: true, Matale: true, Matara: true,
	Moneragala: true, Mullaitivu: true, NuwaraEliya: true, Polonnaruwa: true,
	Puttalam: true, Ratnapura: true, Trincomalee: true, Vavuniya: true,
}

// ParseDistrict converts a string to a District, case-insensitively.
func ParseDistrict(s string) (District, error) {
	d := District(strings.ToUpper(strings.TrimSpace(s)))
	if !districts[d] {
		return "", fmt.Errorf("invalid district: %q", s)
	}
	return d, nil
}

// Specialization is the fixed set of skill areas for technicians.
type Specialization string

const (
	Engine       Specialization = "ENGINE"
	Transmission Specialization = "TRANSMISSION"
	Suspension   Specialization = "SUSPENSION"
	Brakes       Specialization = "BRAKES"
	Electrical   Specialization = "ELECTRICAL"
	Bodywork     Specialization = "BODYWORK"
	Interior     Specialization = "INTERIOR"
	Diagnostics  Specialization = "DIAGNOSTICS"
)

var specializations = map[Specialization]bool{
	Engine: true, Transmission: true, Suspension: true, Brakes: true,
	Electrical: true, Bodywork: true, Interior: true, Diagnostics: true,
}

// ParseSpecialization converts a string to a Specialization, case-insensitively.
func ParseSpecialization(s string) (Specialization, error) {
	sp := Specialization(strings.ToUpper(strings.TrimSpace(s)))
	if !specializations[sp] {
		return "", fmt.Errorf("invalid specialization: %q", s)
	}
	return sp, nil
}

// WorkingHours is the fixed set of working-hours-per-day categories.
type WorkingHours string

const (
	HoursFour   WorkingHours = "4"
	HoursSix    WorkingHours = "6"
	HoursEight  WorkingHours = "8"
	HoursTen    WorkingHours = "10"
	HoursTwelve WorkingHours = "12"
)

var workingHours = map[WorkingHours]bool{
	HoursFour: true, HoursSix: true, HoursEight: true, HoursTen: true, HoursTwelve: true,
}

// ParseWorkingHours converts a string to a WorkingHours category.
func ParseWorkingHours(s string) (WorkingHours, error) {
	wh := WorkingHours(strings.TrimSpace(s))
	if !workingHours[wh] {
		return "", fmt.Errorf("invalid working hours: %q", s)
	}
	return wh, nil
}

// TeamMember represents a service technician on the roster
type TeamMember struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	FullName           string         `gorm:"not null;size:100" json:"full_name"`
	// NIC uniqueness is enforced over live rows only; a soft-deleted member's
	// identity code may be reused by a later record.
	NIC                string         `gorm:"column:nic;uniqueIndex:idx_team_members_nic,where:deleted_at IS NULL;not null;size:12" json:"nic"`
	ContactNo          string         `gorm:"not null;size:15" json:"contact_no"`
	BirthDate          time.Time      `gorm:"not null" json:"birth_date"`
	Age                int            `gorm:"not null" json:"age"` // derived from BirthDate on every create/update
	Address            string         `gorm:"not null;size:200" json:"address"`
	City               District       `gorm:"not null;size:50" json:"city"`
	Specialization     Specialization `gorm:"not null;size:50" json:"specialization"`
	JoinedDate         time.Time      `gorm:"not null" json:"joined_date"`
	WorkingHoursPerDay WorkingHours   `gorm:"not null;size:2" json:"working_hours_per_day"`
	TeamID             string         `gorm:"not null;size:50;index" json:"team_id"`
	SupervisorID       *uint          `gorm:"index" json:"supervisor_id"` // nullable foreign key to users table
	Supervisor         *User          `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the TeamMember model
func (TeamMember) TableName() string {
	return "team_members"
}

// SupervisorName returns the supervisor's display name, or empty if unassigned.
func (m *TeamMember) SupervisorName() string {
	if m.Supervisor == nil {
		return ""
	}
	return m.Supervisor.Name
}
