package models

import "time"

// ApplicationStatus is the lifecycle state of an application
type ApplicationStatus string

const (
	StatusNone         ApplicationStatus = ""
	StatusStarted      ApplicationStatus = "Started Application"
	StatusApplied      ApplicationStatus = "Applied"
	StatusUnderReview  ApplicationStatus = "Under Review"
	StatusInterviewing ApplicationStatus = "Interviewing"
	StatusRejected     ApplicationStatus = "Rejected"
	StatusHired        ApplicationStatus = "Hired"
)

// AllApplicationStatuses lists the statuses in lifecycle order
var AllApplicationStatuses = []ApplicationStatus{
	StatusStarted,
	StatusApplied,
	StatusUnderReview,
	StatusInterviewing,
	StatusRejected,
	StatusHired,
}

// ParseApplicationStatus returns the status matching raw, or false
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	for _, s := range AllApplicationStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return StatusNone, false
}

// Application records one candidate's interaction with one job.
// The document id is the job id inside the applicant's sub-collection.
// @Description Job application
type Application struct {
	ID                         string            `json:"id" firestore:"-"`
	JobID                      string            `json:"jobId" firestore:"jobId"`
	JobTitle                   string            `json:"jobTitle" firestore:"jobTitle"`
	CompanyName                string            `json:"companyName" firestore:"companyName"`
	RecruiterID                string            `json:"recruiterId,omitempty" firestore:"recruiterId"`
	ApplicantID                string            `json:"applicantId" firestore:"applicantId"`
	ApplicantName              string            `json:"applicantName" firestore:"applicantName"`
	ApplicantEmail             string            `json:"applicantEmail" firestore:"applicantEmail"`
	ApplicantPhone             string            `json:"applicantPhone,omitempty" firestore:"applicantPhone"`
	ResumeURL                  string            `json:"resumeUrl,omitempty" firestore:"resumeUrl"`
	ResumeFileName             string            `json:"resumeFileName,omitempty" firestore:"resumeFileName"`
	CoverLetter                string            `json:"coverLetter,omitempty" firestore:"coverLetter"`
	ElevatorPitchText          string            `json:"elevatorPitchText,omitempty" firestore:"elevatorPitchText"`
	ElevatorPitchVideoURL      string            `json:"elevatorPitchVideoUrl,omitempty" firestore:"elevatorPitchVideoUrl"`
	ElevatorPitchVideoFileName string            `json:"elevatorPitchVideoFileName,omitempty" firestore:"elevatorPitchVideoFileName"`
	ScreeningAnswers           []string          `json:"screeningAnswers,omitempty" firestore:"screeningAnswers"`
	Status                     ApplicationStatus `json:"status" firestore:"status" example:"Applied"`
	DraftedAt                  *time.Time        `json:"draftedAt,omitempty" firestore:"draftedAt"`
	AppliedAt                  *time.Time        `json:"appliedAt,omitempty" firestore:"appliedAt"`
	SubmittedAt                *time.Time        `json:"submittedAt,omitempty" firestore:"submittedAt"`
	ParsedResume               *ResumeData       `json:"parsedResume,omitempty" firestore:"parsedResume"`
}

// CandidateApplication is an application as a recruiter reviews it: joined
// with the applicant's profile and the statuses it can move to next
// @Description Application with applicant profile and allowed next statuses
type CandidateApplication struct {
	Application
	CandidateProfile *UserProfile        `json:"candidateProfile,omitempty"`
	NextStatuses     []ApplicationStatus `json:"nextStatuses"`
}

// SortTime is the time used to order applications newest first
func (a *Application) SortTime() time.Time {
	switch {
	case a.SubmittedAt != nil:
		return *a.SubmittedAt
	case a.DraftedAt != nil:
		return *a.DraftedAt
	default:
		return time.Time{}
	}
}
