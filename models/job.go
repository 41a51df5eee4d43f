package models

import "time"

// JobStatus gates candidate visibility of a job
type JobStatus string

const (
	JobStatusDraft     JobStatus = "Draft"
	JobStatusPublished JobStatus = "Published"
)

// EmploymentType constants
const (
	EmploymentFullTime   = "Full-time"
	EmploymentPartTime   = "Part-time"
	EmploymentContract   = "Contract"
	EmploymentTemporary  = "Temporary"
	EmploymentInternship = "Internship"
)

// ExperienceLevel constants
const (
	ExperienceEntryLevel = "Entry-Level"
	ExperienceAssociate  = "Associate"
	ExperienceMid        = "Mid-Level"
	ExperienceSenior     = "Senior"
	ExperienceLead       = "Lead"
	ExperienceManager    = "Manager"
	ExperienceExecutive  = "Executive"
)

// WorkArrangement constants
const (
	WorkOnSite        = "On-site"
	WorkHybrid        = "Hybrid"
	WorkRemoteCountry = "Remote (Country)"
	WorkRemoteGlobal  = "Remote (Global)"
)

// Job is a recruiter-authored requisition
// @Description Job requisition, visible to candidates only when Published
type Job struct {
	ID                   string     `json:"id" firestore:"-"`
	JobTitle             string     `json:"jobTitle" firestore:"jobTitle" example:"Senior Product Designer"`
	CompanyName          string     `json:"companyName" firestore:"companyName" example:"Acme"`
	Location             string     `json:"location" firestore:"location" example:"Berlin"`
	Department           string     `json:"department,omitempty" firestore:"department"`
	Description          string     `json:"description" firestore:"description"`
	Skills               []string   `json:"skills" firestore:"skills"`
	SalaryMin            float64    `json:"salaryMin,omitempty" firestore:"salaryMin"`
	SalaryMax            float64    `json:"salaryMax,omitempty" firestore:"salaryMax"`
	EmploymentType       string     `json:"employmentType,omitempty" firestore:"employmentType"`
	ExperienceLevel      string     `json:"experienceLevel,omitempty" firestore:"experienceLevel"`
	WorkArrangement      string     `json:"workArrangement,omitempty" firestore:"workArrangement"`
	Industry             string     `json:"industry,omitempty" firestore:"industry"`
	RelocationAssistance bool       `json:"relocationAssistance" firestore:"relocationAssistance"`
	Deadline             *time.Time `json:"deadline,omitempty" firestore:"deadline"`
	Status               JobStatus  `json:"status" firestore:"status" example:"Published"`
	RecruiterID          string     `json:"recruiterId" firestore:"recruiterId"`
	PostedAt             time.Time  `json:"postedAt" firestore:"postedAt"`
	UpdatedAt            time.Time  `json:"updatedAt" firestore:"updatedAt"`
	ScreeningQuestions   []string   `json:"screeningQuestions,omitempty" firestore:"screeningQuestions"`
	ApplicantCap         int        `json:"applicantCap,omitempty" firestore:"applicantCap"`
	ResumeUploadRequired *bool      `json:"resumeUploadRequired,omitempty" firestore:"resumeUploadRequired,omitempty"`
	CompanyLogoURL       string     `json:"companyLogoUrl,omitempty" firestore:"companyLogoUrl"`
	AboutCompany         string     `json:"aboutCompany,omitempty" firestore:"aboutCompany"`
	CompanyWebsiteURL    string     `json:"companyWebsiteUrl,omitempty" firestore:"companyWebsiteUrl"`
}

// RequiresResume reports whether applicants must attach a resume. Only an
// explicit false waives it.
func (j *Job) RequiresResume() bool {
	return j.ResumeUploadRequired == nil || *j.ResumeUploadRequired
}

// IsPublished reports whether candidates may see the job
func (j *Job) IsPublished() bool {
	return j.Status == JobStatusPublished
}
