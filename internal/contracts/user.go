package contracts

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level of a user
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

// ParseRole accepts the wire names case-insensitively
func ParseRole(s string) (Role, error) {
	switch r := Role(upper(s)); r {
	case RoleAdmin, RoleManager:
		return r, nil
	}
	return "", Invalid("role", fmt.Sprintf("unknown role %q", s))
}

// JobTitle is the professional title of a user
type JobTitle string

const (
	JobNurse                    JobTitle = "NURSE"
	JobAdministrativeTechnician JobTitle = "ADMINISTRATIVE_TECHNICIAN"
	JobResident                 JobTitle = "RESIDENT"
	JobIntern                   JobTitle = "INTERN"
	JobPhysiotherapist          JobTitle = "PHYSIOTHERAPIST"
	JobDoctor                   JobTitle = "DOCTOR"
	JobPharmacist               JobTitle = "PHARMACIST"
	JobNursingTechnician        JobTitle = "NURSING_TECHNICIAN"
	JobAdmin                    JobTitle = "ADMIN"
)

var jobTitles = []JobTitle{
	JobNurse, JobAdministrativeTechnician, JobResident, JobIntern, JobPhysiotherapist,
	JobDoctor, JobPharmacist, JobNursingTechnician, JobAdmin,
}

// ParseJobTitle accepts the wire names case-insensitively
func ParseJobTitle(s string) (JobTitle, error) {
	jt := JobTitle(upper(s))
	for _, known := range jobTitles {
		if jt == known {
			return jt, nil
		}
	}
	return "", Invalid("jobTitle", fmt.Sprintf("unknown job title %q", s))
}

// User is an account known to the service. Users are seeded, never managed here.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	JobTitle  JobTitle   `json:"jobTitle,omitempty"`
	SectorID  *uuid.UUID `json:"sectorId"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UserFilter combines its non-empty fields with AND.
// Name and Email are case-insensitive substring matches.
type UserFilter struct {
	Name     string
	Email    string
	Role     Role
	JobTitle JobTitle
}

// Matches applies the filter to one user
func (f UserFilter) Matches(u *User) bool {
	if f.Name != "" && !containsFold(u.Name, f.Name) {
		return false
	}
	if f.Email != "" && !containsFold(u.Email, f.Email) {
		return false
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.JobTitle != "" && u.JobTitle != f.JobTitle {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}
