package models

import "time"

// ErrorResponse represents an API error response
// @Description Standard error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid request body"`
	Code    int    `json:"code" example:"400"`
	Details string `json:"details,omitempty" example:"jobTitle is required"`
}

// HealthResponse represents health check response
// @Description Server health status
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Version   string `json:"version" example:"1.0.0"`
	Timestamp string `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// SessionResponse exposes the resolved role to the UI
// @Description Resolved session for the signed-in user
type SessionResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      Role   `json:"role" example:"candidate"`
	Loading   bool   `json:"isLoadingRole"`
	Outcome   string `json:"outcome" example:"resolved"`
	Attempts  int    `json:"attempts"`
	Persisted bool   `json:"persisted,omitempty"`
}

// UpdateProfileRequest is a partial profile update. Role is not writable here.
// @Description Profile update request
type UpdateProfileRequest struct {
	Name           string `json:"name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Skills         string `json:"skills,omitempty"`
	Location       string `json:"location,omitempty"`
	Education      string `json:"education,omitempty"`
	Experience     string `json:"experience,omitempty"`
	JobTitle       string `json:"jobTitle,omitempty"`
	CompanyName    string `json:"companyName,omitempty"`
	CompanyWebsite string `json:"companyWebsite,omitempty"`
}

// UpdateRoleRequest sets a user's role (admin only)
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required" example:"recruiter"`
}

// ProfileResponse represents user profile response
// @Description User profile response
type ProfileResponse struct {
	Profile *UserProfile `json:"profile"`
	Message string       `json:"message,omitempty" example:"Profile updated successfully"`
}

// JobListResponse is a filtered job listing
type JobListResponse struct {
	Jobs  []Job `json:"jobs"`
	Total int   `json:"total"`
}

// JobResponse wraps a single job
type JobResponse struct {
	Job     *Job   `json:"job"`
	Message string `json:"message,omitempty"`
}

// SuggestionRequest asks for description rewrites
type SuggestionRequest struct {
	JobTitle    string `json:"jobTitle"`
	Description string `json:"description"`
}

// SuggestionResponse carries candidate description rewrites
type SuggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

// UploadResponse returns the URL of an uploaded blob
type UploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Message  string `json:"message,omitempty"`
}

// ApplicationResponse wraps a single application
type ApplicationResponse struct {
	Application *Application `json:"application"`
	// NextStatuses is set on recruiter status changes
	NextStatuses []ApplicationStatus `json:"nextStatuses,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// ApplicationListResponse lists applications
type ApplicationListResponse struct {
	Applications []Application `json:"applications"`
	Total        int           `json:"total"`
}

// CandidateListResponse lists applications under review
type CandidateListResponse struct {
	Applications []CandidateApplication `json:"applications"`
	Total        int                    `json:"total"`
}

// StatusUpdateRequest changes an application's status
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required" example:"Under Review"`
}

// EnhanceRequest asks the resume service for rewordings of a section
type EnhanceRequest struct {
	SectionName   string `json:"sectionName" binding:"required" example:"Summary"`
	TextToEnhance string `json:"textToEnhance" binding:"required"`
}

// EnhanceResponse carries rewordings
type EnhanceResponse struct {
	EnhancedVersions []string `json:"enhancedVersions"`
}

// ElevatorPitchResponse carries a generated pitch
type ElevatorPitchResponse struct {
	ElevatorPitch string `json:"elevatorPitch"`
}

// ExportRequest asks for a rendered resume document
type ExportRequest struct {
	Style StyleOptions `json:"style"`
}

// ResumeDraftResponse is the builder state sent to the UI
type ResumeDraftResponse struct {
	Resume  ResumeData `json:"resume"`
	CanUndo bool       `json:"canUndo"`
	CanRedo bool       `json:"canRedo"`
}

// JobRequest is the requisition editor form
// @Description Create or update a job requisition
type JobRequest struct {
	JobTitle             string     `json:"jobTitle" example:"Senior Product Designer"`
	CompanyName          string     `json:"companyName" example:"Acme"`
	Location             string     `json:"location" example:"Berlin"`
	Department           string     `json:"department,omitempty"`
	Description          string     `json:"description" example:"<p>Lead our design team</p>"`
	Skills               []string   `json:"skills,omitempty"`
	SalaryMin            float64    `json:"salaryMin,omitempty" example:"60000"`
	SalaryMax            float64    `json:"salaryMax,omitempty" example:"90000"`
	EmploymentType       string     `json:"employmentType,omitempty" example:"Full-time"`
	ExperienceLevel      string     `json:"experienceLevel,omitempty" example:"Senior"`
	WorkArrangement      string     `json:"workArrangement,omitempty" example:"Hybrid"`
	Industry             string     `json:"industry,omitempty"`
	RelocationAssistance bool       `json:"relocationAssistance"`
	Deadline             *time.Time `json:"deadline,omitempty"`
	ScreeningQuestions   []string   `json:"screeningQuestions,omitempty"`
	ApplicantCap         int        `json:"applicantCap,omitempty"`
	ResumeUploadRequired *bool      `json:"resumeUploadRequired,omitempty"`
	CompanyLogoURL       string     `json:"companyLogoUrl,omitempty"`
	AboutCompany         string     `json:"aboutCompany,omitempty"`
	CompanyWebsiteURL    string     `json:"companyWebsiteUrl,omitempty"`
	// Publish makes the job visible to candidates; otherwise it is saved as a draft
	Publish bool `json:"publish"`
}

// ApplicationForm carries the apply page fields. Files travel alongside it.
// @Description Job application form
type ApplicationForm struct {
	FullName          string   `json:"fullName" form:"fullName" example:"Jane Doe"`
	Email             string   `json:"email" form:"email" example:"jane@example.com"`
	Phone             string   `json:"phone" form:"phone" example:"+49 30 1234567"`
	CoverLetter       string   `json:"coverLetter,omitempty" form:"coverLetter"`
	ElevatorPitchText string   `json:"elevatorPitchText,omitempty" form:"elevatorPitchText"`
	ScreeningAnswers  []string `json:"screeningAnswers,omitempty" form:"screeningAnswers"`
	TermsAccepted     bool     `json:"termsAccepted" form:"termsAccepted"`
}
