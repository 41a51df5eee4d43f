package resume

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/careerverse/backend/models"
)

// Normalize coerces loosely-typed parser output into a ResumeData.
// It never fails: anything unusable becomes the empty value for its field.
func Normalize(raw []byte) models.ResumeData {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return models.EmptyResume()
	}
	return normalizeValue(v)
}

// normalizeValue is Normalize over an already-decoded JSON value
func normalizeValue(v interface{}) models.ResumeData {
	out := models.EmptyResume()
	doc, ok := v.(map[string]interface{})
	if !ok {
		return out
	}

	if personal, ok := doc["personal"].(map[string]interface{}); ok {
		out.Personal = models.PersonalInfo{
			Name:        str(personal["name"]),
			Email:       str(personal["email"]),
			Phone:       str(personal["phone"]),
			Location:    str(personal["location"]),
			LegalStatus: models.DefaultLegalStatus,
		}
		if status, ok := personal["legalStatus"].(string); ok {
			out.Personal.LegalStatus = status
		}
	}
	out.Summary = str(doc["summary"])

	for _, e := range entries(doc["experience"]) {
		out.Experience = append(out.Experience, models.ExperienceEntry{
			ID:          id(e),
			JobTitle:    str(e["jobTitle"]),
			Company:     str(e["company"]),
			Dates:       str(e["dates"]),
			Description: str(e["description"]),
		})
	}
	for _, e := range entries(doc["education"]) {
		out.Education = append(out.Education, models.EducationEntry{
			ID:             id(e),
			Degree:         str(e["degree"]),
			Institution:    str(e["institution"]),
			GraduationYear: str(e["graduationYear"]),
			GPA:            str(e["gpa"]),
			Achievements:   str(e["achievements"]),
		})
	}
	for _, e := range entries(doc["skills"]) {
		out.Skills = append(out.Skills, models.SkillCategory{
			ID:         id(e),
			Category:   str(e["category"]),
			SkillsList: str(e["skills_list"]),
		})
	}
	for _, e := range entries(doc["certifications"]) {
		out.Certifications = append(out.Certifications, models.CertificationEntry{
			ID:     id(e),
			Name:   str(e["name"]),
			Issuer: str(e["issuer"]),
			Date:   str(e["date"]),
		})
	}
	for _, e := range entries(doc["publications"]) {
		out.Publications = append(out.Publications, models.PublicationEntry{
			ID:      id(e),
			Title:   str(e["title"]),
			Authors: str(e["authors"]),
			Journal: str(e["journal"]),
			Date:    str(e["date"]),
			Link:    str(e["link"]),
		})
	}
	for _, e := range entries(doc["projects"]) {
		out.Projects = append(out.Projects, models.ProjectEntry{
			ID:          id(e),
			Title:       str(e["title"]),
			Date:        str(e["date"]),
			Description: str(e["description"]),
		})
	}
	return out
}

// entries returns the objects of a list field. A lone object is treated as a
// one-element list; non-object elements are dropped.
func entries(v interface{}) []map[string]interface{} {
	var items []interface{}
	switch t := v.(type) {
	case []interface{}:
		items = t
	case map[string]interface{}:
		items = []interface{}{t}
	default:
		return nil
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func str(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func id(entry map[string]interface{}) string {
	if s := str(entry["id"]); s != "" {
		return s
	}
	return uuid.NewString()
}

// EnsureIDs assigns ids to entries that lack one. Edits coming from the UI
// may add entries without ids.
func EnsureIDs(r *models.ResumeData) {
	for i := range r.Experience {
		fill(&r.Experience[i].ID)
	}
	for i := range r.Education {
		fill(&r.Education[i].ID)
	}
	for i := range r.Skills {
		fill(&r.Skills[i].ID)
	}
	for i := range r.Certifications {
		fill(&r.Certifications[i].ID)
	}
	for i := range r.Publications {
		fill(&r.Publications[i].ID)
	}
	for i := range r.Projects {
		fill(&r.Projects[i].ID)
	}
	if r.Personal.LegalStatus == "" {
		r.Personal.LegalStatus = models.DefaultLegalStatus
	}
	ensureLists(r)
}

func fill(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func ensureLists(r *models.ResumeData) {
	if r.Experience == nil {
		r.Experience = []models.ExperienceEntry{}
	}
	if r.Education == nil {
		r.Education = []models.EducationEntry{}
	}
	if r.Skills == nil {
		r.Skills = []models.SkillCategory{}
	}
	if r.Certifications == nil {
		r.Certifications = []models.CertificationEntry{}
	}
	if r.Publications == nil {
		r.Publications = []models.PublicationEntry{}
	}
	if r.Projects == nil {
		r.Projects = []models.ProjectEntry{}
	}
}
