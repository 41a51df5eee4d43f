package resume

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerverse/backend/config"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
)

func TestNormalize(t *testing.T) {
	raw := `{
		"personal": {"name": "Ada Lovelace", "email": 42, "phone": null},
		"summary": ["not", "a", "string"],
		"experience": {"jobTitle": "Analyst", "company": "Engines Ltd"},
		"education": [{"id": "edu-1", "degree": "BSc", "graduationYear": 1835}, "junk"],
		"skills": "Go, SQL",
		"projects": [{"title": "Notes"}]
	}`

	got := Normalize([]byte(raw))

	assert.Equal(t, "Ada Lovelace", got.Personal.Name)
	assert.Equal(t, "42", got.Personal.Email)
	assert.Equal(t, "", got.Personal.Phone)
	assert.Equal(t, models.DefaultLegalStatus, got.Personal.LegalStatus)
	assert.Equal(t, "", got.Summary)

	require.Len(t, got.Experience, 1, "a lone object is wrapped in a list")
	assert.Equal(t, "Analyst", got.Experience[0].JobTitle)
	assert.NotEmpty(t, got.Experience[0].ID)

	require.Len(t, got.Education, 1)
	assert.Equal(t, "edu-1", got.Education[0].ID)
	assert.Equal(t, "1835", got.Education[0].GraduationYear)

	assert.NotNil(t, got.Skills)
	assert.Empty(t, got.Skills)
	assert.NotNil(t, got.Certifications)
	assert.NotNil(t, got.Publications)
	require.Len(t, got.Projects, 1)
}

func TestNormalize_Garbage(t *testing.T) {
	for _, raw := range []string{``, `null`, `[1,2]`, `"text"`, `{bad json`} {
		got := Normalize([]byte(raw))
		assert.Equal(t, models.EmptyResume(), got, "input %q", raw)
	}
}

func TestNormalize_KeepsLegalStatus(t *testing.T) {
	got := Normalize([]byte(`{"personal": {"legalStatus": "Citizen"}}`))
	assert.Equal(t, "Citizen", got.Personal.LegalStatus)
}

func resumeNamed(name string) models.ResumeData {
	r := models.EmptyResume()
	r.Personal.Name = name
	return r
}

func TestHistory_PushUndoRedo(t *testing.T) {
	h := NewHistory(resumeNamed("a"), 10)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	assert.True(t, h.Push(resumeNamed("b")))
	assert.True(t, h.Push(resumeNamed("c")))
	assert.False(t, h.Push(resumeNamed("c")), "identical state is skipped")
	assert.Equal(t, 3, h.Len())

	require.True(t, h.Undo())
	require.True(t, h.Undo())
	assert.Equal(t, "a", h.Current().Personal.Name)
	assert.False(t, h.Undo())

	require.True(t, h.Redo())
	assert.Equal(t, "b", h.Current().Personal.Name)

	h.Push(resumeNamed("d"))
	assert.False(t, h.CanRedo(), "push after undo drops the redo tail")
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "d", h.Current().Personal.Name)
}

func TestHistory_ForcePush(t *testing.T) {
	h := NewHistory(resumeNamed("a"), 10)
	h.ForcePush(resumeNamed("a"))
	assert.Equal(t, 2, h.Len())
	assert.True(t, h.CanUndo())
}

func TestHistory_Bounded(t *testing.T) {
	h := NewHistory(resumeNamed("0"), 3)
	for _, name := range []string{"1", "2", "3", "4"} {
		h.Push(resumeNamed(name))
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "4", h.Current().Personal.Name)

	h.Undo()
	h.Undo()
	assert.Equal(t, "2", h.Current().Personal.Name)
	assert.False(t, h.CanUndo())
}

func TestHistory_DraftRoundTrip(t *testing.T) {
	h := NewHistory(resumeNamed("a"), 10)
	h.Push(resumeNamed("b"))
	h.Undo()

	draft := h.Draft("user-1", time.Now())
	restored := FromDraft(draft, 10)

	assert.Equal(t, "a", restored.Current().Personal.Name)
	assert.True(t, restored.CanRedo())
}

func TestFromDraft_Fallbacks(t *testing.T) {
	assert.Equal(t, models.EmptyResume(), FromDraft(nil, 10).Current())

	bad := &models.ResumeDraft{Snapshots: []models.ResumeData{resumeNamed("a"), resumeNamed("b")}, Cursor: 7}
	assert.Equal(t, "b", FromDraft(bad, 10).Current().Personal.Name)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{
		ResumeServiceURL:   srv.URL + "/api/",
		ResumeServiceRPS:   100,
		HTTPTimeoutSeconds: 5,
	})
}

func TestClient_ParseResume(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/parse-resume", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cv.pdf", header.Filename)
		body, _ := io.ReadAll(file)
		assert.Equal(t, "%PDF-1.4", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"parsedData": {"personal": {"name": "Ada"}, "experience": {"jobTitle": "Analyst"}}}`))
	})

	got, err := client.ParseResume(context.Background(), "cv.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Personal.Name)
	require.Len(t, got.Experience, 1)
}

func TestClient_EnhanceAndPitch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch r.URL.Path {
		case "/api/enhance-section":
			assert.JSONEq(t, `"Summary"`, string(body["sectionName"]))
			assert.JSONEq(t, `"I code"`, string(body["textToEnhance"]))
			_, _ = w.Write([]byte(`{"enhancedVersions": ["I write software", "I build systems"]}`))
		case "/api/generate-elevator-pitch":
			assert.Contains(t, string(body["resumeData"]), `"name":"Ada"`)
			_, _ = w.Write([]byte(`{"elevatorPitch": "Hi, I am Ada."}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	versions, err := client.EnhanceSection(context.Background(), SectionSummary, "I code")
	require.NoError(t, err)
	assert.Equal(t, []string{"I write software", "I build systems"}, versions)

	pitch, err := client.ElevatorPitch(context.Background(), resumeNamed("Ada"))
	require.NoError(t, err)
	assert.Equal(t, "Hi, I am Ada.", pitch)
}

func TestClient_Render(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate-docx", r.URL.Path)
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "personal", "resume fields are sent at the top level")
		assert.JSONEq(t, `{"fontFamily": "Calibri, sans-serif", "fontSize": 14, "accentColor": "#34495e"}`, string(body["styleOptions"]))
		_, _ = w.Write([]byte("DOCX"))
	})

	doc, err := client.Render(context.Background(), FormatDOCX, resumeNamed("Ada Lovelace"), models.StyleOptions{FontSize: 14})
	require.NoError(t, err)
	assert.Equal(t, []byte("DOCX"), doc.Data)
	assert.Equal(t, "Ada_Lovelace.docx", doc.FileName)
	assert.Contains(t, doc.ContentType, "wordprocessingml")

	_, err = client.Render(context.Background(), "odt", resumeNamed("Ada"), models.StyleOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestClient_ServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "No file part"}`))
	})

	_, err := client.ParseResume(context.Background(), "cv.pdf", strings.NewReader("x"))
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, "No file part", svcErr.Message)
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "resume.pdf", ExportFileName(models.EmptyResume(), FormatPDF))
	assert.Equal(t, "Grace_B_Hopper.pdf", ExportFileName(resumeNamed(" Grace  B Hopper "), FormatPDF))
}

type fakeAPI struct {
	parsed      models.ResumeData
	enhanced    []string
	pitch       string
	lastSection string
	lastText    string
	lastStyle   models.StyleOptions
	rendered    models.ResumeData
}

func (f *fakeAPI) ParseResume(ctx context.Context, fileName string, body io.Reader) (models.ResumeData, error) {
	return f.parsed, nil
}

func (f *fakeAPI) EnhanceSection(ctx context.Context, sectionName, text string) ([]string, error) {
	f.lastSection = sectionName
	f.lastText = text
	return f.enhanced, nil
}

func (f *fakeAPI) ElevatorPitch(ctx context.Context, data models.ResumeData) (string, error) {
	return f.pitch + " " + data.Personal.Name, nil
}

func (f *fakeAPI) Render(ctx context.Context, format string, data models.ResumeData, style models.StyleOptions) (*Document, error) {
	f.rendered = data
	f.lastStyle = style
	return &Document{Data: []byte(format), FileName: ExportFileName(data, format)}, nil
}

func TestBuilder_EditUndoRedoPersist(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	b := NewBuilder(store, &fakeAPI{}, nil)

	state, err := b.Load(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, state.CanUndo)

	edited := models.EmptyResume()
	edited.Personal.Name = "Ada"
	edited.Experience = []models.ExperienceEntry{{JobTitle: "Analyst"}}
	state, err = b.Edit(ctx, "u1", edited)
	require.NoError(t, err)
	assert.True(t, state.CanUndo)
	assert.NotEmpty(t, state.Resume.Experience[0].ID, "new entries get an id")

	// a fresh builder sees the persisted history
	b2 := NewBuilder(store, &fakeAPI{}, nil)
	state, err = b2.Undo(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "", state.Resume.Personal.Name)
	assert.True(t, state.CanRedo)

	state, err = b2.Redo(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", state.Resume.Personal.Name)
}

func TestBuilder_ImportAlwaysRecords(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{parsed: models.EmptyResume()}
	b := NewBuilder(storage.NewMemoryStore(), api, nil)

	state, err := b.Import(ctx, "u1", "cv.pdf", 10, strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, state.CanUndo, "import of an identical resume still adds a snapshot")

	_, err = b.Import(ctx, "u1", "cv.exe", 10, strings.NewReader("x"))
	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestBuilder_Enhance(t *testing.T) {
	api := &fakeAPI{enhanced: []string{"better"}}
	b := NewBuilder(storage.NewMemoryStore(), api, nil)

	got, err := b.Enhance(context.Background(), SectionSummary, "<p>I <b>code</b></p>")
	require.NoError(t, err)
	assert.Equal(t, []string{"better"}, got)
	assert.NotContains(t, api.lastText, "<b>")

	var vErr *models.ValidationError
	_, err = b.Enhance(context.Background(), SectionSummary, "   ")
	assert.True(t, errors.As(err, &vErr))

	_, err = b.Enhance(context.Background(), "Hobbies", "chess")
	assert.True(t, errors.As(err, &vErr))

	for _, name := range []string{"summary", " SUMMARY ", "experience description"} {
		_, err := b.Enhance(context.Background(), name, "I code")
		require.NoError(t, err, name)
	}
	assert.Equal(t, SectionExperience, api.lastSection, "the service receives the canonical name")
}

func TestBuilder_PitchAndExport(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{pitch: "Meet"}
	b := NewBuilder(storage.NewMemoryStore(), api, nil)
	_, err := b.Edit(ctx, "u1", resumeNamed("Ada"))
	require.NoError(t, err)

	pitch, err := b.Pitch(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Meet Ada", pitch)

	doc, err := b.Export(ctx, "u1", "PDF", models.StyleOptions{AccentColor: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, "Ada.pdf", doc.FileName)
	assert.Equal(t, "#000000", api.lastStyle.AccentColor)

	_, err = b.Export(ctx, "u1", "rtf", models.StyleOptions{})
	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestBuilder_UploadPitchVideo(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "u1", Role: models.RoleCandidate}

	_, err := NewBuilder(storage.NewMemoryStore(), &fakeAPI{}, nil).UploadPitchVideo(ctx, actor, "pitch.mp4", 3, strings.NewReader("vid"))
	assert.ErrorIs(t, err, ErrUploadsDisabled)

	blobs := storage.NewMemoryBlobStore()
	b := NewBuilder(storage.NewMemoryStore(), &fakeAPI{}, blobs)
	url, err := b.UploadPitchVideo(ctx, actor, "pitch.mp4", 3, strings.NewReader("vid"))
	require.NoError(t, err)
	assert.Contains(t, url, "pitches/")
	assert.Equal(t, 1, blobs.Len())

	_, err = b.UploadPitchVideo(ctx, actor, "pitch.gif", 3, strings.NewReader("vid"))
	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestWithDefaults(t *testing.T) {
	assert.Equal(t, models.StyleOptions{FontFamily: "Calibri, sans-serif", FontSize: 11, AccentColor: "#34495e"}, WithDefaults(models.StyleOptions{}))
}
