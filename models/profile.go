package models

import "strings"

// Role gates navigation and page access
type Role string

const (
	RoleNone      Role = ""
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a stored role string to a Role. Unknown values map to RoleNone.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCandidate:
		return RoleCandidate
	case RoleRecruiter:
		return RoleRecruiter
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleNone
	}
}

// IsStaff reports whether the role may act on requisitions and applicants
func (r Role) IsStaff() bool {
	return r == RoleRecruiter || r == RoleAdmin
}

// UserProfile is the per-identity profile document
// @Description User profile holding role and personal/professional fields
type UserProfile struct {
	UserID         string `json:"userId" firestore:"-"`
	Name           string `json:"name" firestore:"name,omitempty" example:"Jane Doe"`
	Email          string `json:"email" firestore:"email,omitempty" example:"jane@example.com"`
	Phone          string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Role           Role   `json:"role" firestore:"role,omitempty" example:"candidate"`
	Skills         string `json:"skills,omitempty" firestore:"skills,omitempty"`
	Location       string `json:"location,omitempty" firestore:"location,omitempty"`
	Education      string `json:"education,omitempty" firestore:"education,omitempty"`
	Experience     string `json:"experience,omitempty" firestore:"experience,omitempty"`
	JobTitle       string `json:"jobTitle,omitempty" firestore:"jobTitle,omitempty"`
	CompanyName    string `json:"companyName,omitempty" firestore:"companyName,omitempty"`
	CompanyWebsite string `json:"companyWebsite,omitempty" firestore:"companyWebsite,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty" firestore:"createdAt,omitempty" example:"2024-01-15T10:30:00Z"`
	UpdatedAt      string `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// HasRole reports whether the profile carries a usable role
func (p *UserProfile) HasRole() bool {
	return p != nil && ParseRole(string(p.Role)) != RoleNone
}

// Fields returns the non-empty fields of the profile keyed by document field
// name. It is the payload of a merge write: empty fields never clobber
// stored values.
func (p *UserProfile) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	set("name", p.Name)
	set("email", p.Email)
	set("phone", p.Phone)
	set("role", string(p.Role))
	set("skills", p.Skills)
	set("location", p.Location)
	set("education", p.Education)
	set("experience", p.Experience)
	set("jobTitle", p.JobTitle)
	set("companyName", p.CompanyName)
	set("companyWebsite", p.CompanyWebsite)
	set("createdAt", p.CreatedAt)
	set("updatedAt", p.UpdatedAt)
	return fields
}

// MergeProfile copies the non-empty fields of src onto dst
func MergeProfile(dst *UserProfile, src UserProfile) {
	merge := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	merge(&dst.Name, src.Name)
	merge(&dst.Email, src.Email)
	merge(&dst.Phone, src.Phone)
	if src.Role != RoleNone {
		dst.Role = src.Role
	}
	merge(&dst.Skills, src.Skills)
	merge(&dst.Location, src.Location)
	merge(&dst.Education, src.Education)
	merge(&dst.Experience, src.Experience)
	merge(&dst.JobTitle, src.JobTitle)
	merge(&dst.CompanyName, src.CompanyName)
	merge(&dst.CompanyWebsite, src.CompanyWebsite)
	merge(&dst.CreatedAt, src.CreatedAt)
	merge(&dst.UpdatedAt, src.UpdatedAt)
}

// Actor is the caller an operation is performed on behalf of
type Actor struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

// IsAdmin reports whether the actor bypasses ownership checks
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
