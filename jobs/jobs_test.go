package jobs

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
)

func sampleJobs() []models.Job {
	return []models.Job{
		{ID: "1", JobTitle: "Backend Engineer", CompanyName: "Acme", Location: "Berlin, DE", Description: "Build APIs", Skills: []string{"Go", "SQL"}, EmploymentType: models.EmploymentFullTime, ExperienceLevel: models.ExperienceSenior, WorkArrangement: models.WorkHybrid},
		{ID: "2", JobTitle: "Product Designer", CompanyName: "Globex", Location: "Remote", Description: "Design flows in Figma", EmploymentType: models.EmploymentContract, ExperienceLevel: models.ExperienceMid, WorkArrangement: models.WorkRemoteGlobal},
		{ID: "3", JobTitle: "Data Engineer", CompanyName: "ACME Labs", Location: "Munich", Description: "Pipelines", Skills: []string{"Python", "golang"}, EmploymentType: models.EmploymentFullTime, ExperienceLevel: models.ExperienceMid, WorkArrangement: models.WorkOnSite},
	}
}

func ids(jobs []models.Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter keeps everything", Filter{}, []string{"1", "2", "3"}},
		{"keyword matches skills case-insensitively", Filter{Keywords: "GO"}, []string{"1", "3"}},
		{"keyword matches description", Filter{Keywords: "figma"}, []string{"2"}},
		{"keyword matches company", Filter{Keywords: "globex"}, []string{"2"}},
		{"company substring", Filter{Company: "acme"}, []string{"1", "3"}},
		{"location substring", Filter{Location: "berlin"}, []string{"1"}},
		{"set membership", Filter{EmploymentTypes: []string{models.EmploymentFullTime}}, []string{"1", "3"}},
		{"multiple values in one set", Filter{WorkArrangements: []string{models.WorkHybrid, models.WorkRemoteGlobal}}, []string{"1", "2"}},
		{"conjunction", Filter{Company: "acme", ExperienceLevels: []string{models.ExperienceMid}}, []string{"3"}},
		{"no match", Filter{Keywords: "rust"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(sampleJobs(), tt.filter)))
		})
	}
}

func TestApply_IdempotentAndPure(t *testing.T) {
	jobs := sampleJobs()
	f := Filter{Keywords: "engineer", EmploymentTypes: []string{models.EmploymentFullTime}}

	once := Apply(jobs, f)
	twice := Apply(once, f)
	assert.Equal(t, once, twice)
	assert.Equal(t, sampleJobs(), jobs, "input must not be modified")
}

func TestFilterFromQuery(t *testing.T) {
	q := url.Values{
		"q":              {" go "},
		"employmentType": {"Full-time,Contract", "Internship"},
	}
	f := FilterFromQuery(q)
	assert.Equal(t, "go", f.Keywords)
	assert.Equal(t, []string{"Full-time", "Contract", "Internship"}, f.EmploymentTypes)
	assert.True(t, Filter{}.IsZero())
	assert.False(t, f.IsZero())
}

func TestPushRecent(t *testing.T) {
	var list []models.Job
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		list = PushRecent(list, models.Job{ID: id}, MaxRecent)
	}
	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, ids(list))

	list = PushRecent(list, models.Job{ID: "c"}, MaxRecent)
	assert.Equal(t, []string{"c", "f", "e", "d", "b"}, ids(list), "re-viewing moves to front without duplicating")
}

func TestRecentTracker(t *testing.T) {
	tr := NewRecentTracker(0)
	tr.Record("u1", models.Job{ID: "a"})
	tr.Record("u1", models.Job{ID: "b"})
	tr.Record("u2", models.Job{ID: "z"})

	assert.Equal(t, []string{"b", "a"}, ids(tr.List("u1")))
	tr.Forget("u1")
	assert.Empty(t, tr.List("u1"))
	assert.Equal(t, []string{"z"}, ids(tr.List("u2")))
}

var (
	recruiter = models.Actor{UserID: "rec-1", Role: models.RoleRecruiter}
	other     = models.Actor{UserID: "rec-2", Role: models.RoleRecruiter}
	admin     = models.Actor{UserID: "adm", Role: models.RoleAdmin}
	candidate = models.Actor{UserID: "cand", Role: models.RoleCandidate}
)

func validRequest() models.JobRequest {
	return models.JobRequest{
		JobTitle:    "Senior Product Designer",
		CompanyName: "Acme",
		Location:    "Berlin",
		Description: "<p>Lead our design team</p>",
		Skills:      []string{"Figma", " ", "UX"},
	}
}

func newService(t *testing.T) (*Service, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	svc := NewService(store, storage.NewMemoryBlobStore(), nil)
	clock := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc, store
}

func TestSave_CreateDraftThenPublish(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	job, err := svc.Save(ctx, recruiter, "", validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDraft, job.Status)
	assert.Equal(t, "rec-1", job.RecruiterID)
	assert.Equal(t, []string{"Figma", "UX"}, job.Skills)
	posted := job.PostedAt

	list, err := svc.ListPublished(ctx, Filter{})
	require.NoError(t, err)
	assert.Empty(t, list, "drafts are not listed")

	_, err = svc.Get(ctx, candidate, job.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	req := validRequest()
	req.Publish = true
	published, err := svc.Save(ctx, recruiter, job.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPublished, published.Status)
	assert.Equal(t, posted, published.PostedAt, "update keeps postedAt")
	assert.True(t, published.UpdatedAt.After(posted))

	list, err = svc.ListPublished(ctx, Filter{Keywords: "designer"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSave_Validation(t *testing.T) {
	svc, store := newService(t)

	req := validRequest()
	req.JobTitle = " "
	req.Description = "<p><br></p>"
	_, err := svc.Save(context.Background(), recruiter, "", req)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"jobTitle", "description"}, verr.Fields)

	jobs, _ := store.ListJobsByRecruiter(context.Background(), "rec-1")
	assert.Empty(t, jobs, "nothing written on validation failure")

	req = validRequest()
	req.SalaryMin, req.SalaryMax = 100, 50
	_, err = svc.Save(context.Background(), recruiter, "", req)
	assert.True(t, errors.As(err, &verr))
}

func TestSave_Ownership(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	job, err := svc.Save(ctx, recruiter, "", validRequest())
	require.NoError(t, err)

	_, err = svc.Save(ctx, other, job.ID, validRequest())
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.Save(ctx, candidate, "", validRequest())
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.Save(ctx, admin, job.ID, validRequest())
	assert.NoError(t, err, "admins may edit any requisition")

	assert.ErrorIs(t, svc.Delete(ctx, other, job.ID), models.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, recruiter, job.ID))
	_, err = svc.Get(ctx, admin, job.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListForRecruiter(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, recruiter, "", validRequest())
	require.NoError(t, err)
	second, err := svc.Save(ctx, recruiter, "", validRequest())
	require.NoError(t, err)
	_, err = svc.Save(ctx, other, "", validRequest())
	require.NoError(t, err)

	mine, err := svc.ListForRecruiter(ctx, recruiter, RequisitionFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, ids(mine))

	_, err = svc.ListForRecruiter(ctx, candidate, RequisitionFilter{})
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestListForRecruiter_Filter(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	draft, err := svc.Save(ctx, recruiter, "", validRequest())
	require.NoError(t, err)
	req := validRequest()
	req.JobTitle = "Staff Engineer"
	req.Location = "Remote"
	req.Publish = true
	published, err := svc.Save(ctx, recruiter, "", req)
	require.NoError(t, err)

	tests := []struct {
		name   string
		status string
		query  string
		want   []string
	}{
		{"all", "All", "", []string{draft.ID, published.ID}},
		{"empty status", "", "", []string{draft.ID, published.ID}},
		{"drafts", "Draft", "", []string{draft.ID}},
		{"published lower case", "published", "", []string{published.ID}},
		{"title search", "", "designer", []string{draft.ID}},
		{"location search", "All", "REMOTE", []string{published.ID}},
		{"company search", "", "acme", []string{draft.ID, published.ID}},
		{"status and search", "Draft", "remote", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := ParseRequisitionFilter(tt.status, tt.query)
			require.NoError(t, err)
			got, err := svc.ListForRecruiter(ctx, recruiter, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	_, err = ParseRequisitionFilter("Archived", "")
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestView_RecordsRecent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	req := validRequest()
	req.Publish = true

	job, err := svc.Save(ctx, recruiter, "", req)
	require.NoError(t, err)

	_, err = svc.View(ctx, candidate, job.ID)
	require.NoError(t, err)
	_, err = svc.View(ctx, candidate, job.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{job.ID}, ids(svc.Recent(candidate)))
	assert.Empty(t, svc.Recent(recruiter))
}

type recordingSuggester struct{ got string }

func (r *recordingSuggester) SuggestDescriptions(ctx context.Context, title, description string) ([]string, error) {
	r.got = description
	return []string{"rewritten"}, nil
}

func TestSuggest(t *testing.T) {
	rec := &recordingSuggester{}
	svc := NewService(storage.NewMemoryStore(), nil, rec)

	out, err := svc.Suggest(context.Background(), "Designer", "<p>Lead <strong>design</strong></p>")
	require.NoError(t, err)
	assert.Equal(t, []string{"rewritten"}, out)
	assert.Contains(t, rec.got, "**design**")
	assert.NotContains(t, rec.got, "<p>")

	_, err = svc.Suggest(context.Background(), "Designer", "   ")
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestStaticSuggester(t *testing.T) {
	out, err := StaticSuggester{}.SuggestDescriptions(context.Background(), "", "anything")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.True(t, strings.Contains(out[0], "**Senior Product Designer**"))
}

func TestUploadLogo(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	url, err := svc.UploadLogo(ctx, recruiter, "acme.png", 3, bytes.NewBufferString("png"))
	require.NoError(t, err)
	assert.Contains(t, url, "logos/rec-1/")

	_, err = svc.UploadLogo(ctx, recruiter, "acme.exe", 3, bytes.NewBufferString("x"))
	var verr *models.ValidationError
	assert.True(t, errors.As(err, &verr))

	noBlobs := NewService(storage.NewMemoryStore(), nil, nil)
	_, err = noBlobs.UploadLogo(ctx, recruiter, "acme.png", 3, bytes.NewBufferString("png"))
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}
