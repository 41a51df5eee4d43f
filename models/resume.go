package models

import "time"

// DefaultLegalStatus is used when a parsed resume carries no legal status
const DefaultLegalStatus = "Prefer not to say"

// ResumeData is the resume builder document
type ResumeData struct {
	Personal       PersonalInfo         `json:"personal" firestore:"personal"`
	Summary        string               `json:"summary" firestore:"summary"`
	Experience     []ExperienceEntry    `json:"experience" firestore:"experience"`
	Education      []EducationEntry     `json:"education" firestore:"education"`
	Skills         []SkillCategory      `json:"skills" firestore:"skills"`
	Certifications []CertificationEntry `json:"certifications" firestore:"certifications"`
	Publications   []PublicationEntry   `json:"publications" firestore:"publications"`
	Projects       []ProjectEntry       `json:"projects" firestore:"projects"`
}

// PersonalInfo holds contact details
type PersonalInfo struct {
	Name        string `json:"name" firestore:"name"`
	Email       string `json:"email" firestore:"email"`
	Phone       string `json:"phone" firestore:"phone"`
	Location    string `json:"location" firestore:"location"`
	LegalStatus string `json:"legalStatus" firestore:"legalStatus"`
}

// ExperienceEntry is one position
type ExperienceEntry struct {
	ID          string `json:"id" firestore:"id"`
	JobTitle    string `json:"jobTitle" firestore:"jobTitle"`
	Company     string `json:"company" firestore:"company"`
	Dates       string `json:"dates" firestore:"dates"`
	Description string `json:"description" firestore:"description"`
}

// EducationEntry is one degree
type EducationEntry struct {
	ID             string `json:"id" firestore:"id"`
	Degree         string `json:"degree" firestore:"degree"`
	Institution    string `json:"institution" firestore:"institution"`
	GraduationYear string `json:"graduationYear" firestore:"graduationYear"`
	GPA            string `json:"gpa" firestore:"gpa"`
	Achievements   string `json:"achievements" firestore:"achievements"`
}

// SkillCategory groups a comma-separated skill list under a heading
type SkillCategory struct {
	ID         string `json:"id" firestore:"id"`
	Category   string `json:"category" firestore:"category"`
	SkillsList string `json:"skills_list" firestore:"skills_list"`
}

// CertificationEntry is one certificate
type CertificationEntry struct {
	ID     string `json:"id" firestore:"id"`
	Name   string `json:"name" firestore:"name"`
	Issuer string `json:"issuer" firestore:"issuer"`
	Date   string `json:"date" firestore:"date"`
}

// PublicationEntry is one publication
type PublicationEntry struct {
	ID      string `json:"id" firestore:"id"`
	Title   string `json:"title" firestore:"title"`
	Authors string `json:"authors" firestore:"authors"`
	Journal string `json:"journal" firestore:"journal"`
	Date    string `json:"date" firestore:"date"`
	Link    string `json:"link" firestore:"link"`
}

// ProjectEntry is one project
type ProjectEntry struct {
	ID          string `json:"id" firestore:"id"`
	Title       string `json:"title" firestore:"title"`
	Date        string `json:"date" firestore:"date"`
	Description string `json:"description" firestore:"description"`
}

// EmptyResume returns a fully-shaped resume with empty lists
func EmptyResume() ResumeData {
	return ResumeData{
		Personal:       PersonalInfo{LegalStatus: DefaultLegalStatus},
		Experience:     []ExperienceEntry{},
		Education:      []EducationEntry{},
		Skills:         []SkillCategory{},
		Certifications: []CertificationEntry{},
		Publications:   []PublicationEntry{},
		Projects:       []ProjectEntry{},
	}
}

// StyleOptions control document export rendering
type StyleOptions struct {
	FontFamily  string `json:"fontFamily,omitempty" example:"Calibri, sans-serif"`
	FontSize    int    `json:"fontSize,omitempty" example:"11"`
	AccentColor string `json:"accentColor,omitempty" example:"#34495e"`
}

// ResumeDraft is the persisted undo/redo history of a user's resume
type ResumeDraft struct {
	UserID    string       `json:"userId" firestore:"-"`
	Snapshots []ResumeData `json:"snapshots" firestore:"snapshots"`
	Cursor    int          `json:"cursor" firestore:"cursor"`
	UpdatedAt time.Time    `json:"updatedAt" firestore:"updatedAt"`
}
