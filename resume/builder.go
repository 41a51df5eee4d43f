package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
	"github.com/careerverse/backend/utils"
)

// Sections that can be sent for enhancement
const (
	SectionSummary    = "Summary"
	SectionExperience = "Experience Description"
	SectionEducation  = "Education Achievements"
	SectionProject    = "Project Description"
)

var enhanceableSections = []string{SectionSummary, SectionExperience, SectionEducation, SectionProject}

// canonicalSection maps a section name in any letter case to its canonical form
func canonicalSection(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, section := range enhanceableSections {
		if strings.EqualFold(section, name) {
			return section, true
		}
	}
	return "", false
}

// ErrUploadsDisabled is returned when no blob store is configured
var ErrUploadsDisabled = storage.ErrUploadsDisabled

// API is the external resume service
type API interface {
	ParseResume(ctx context.Context, fileName string, body io.Reader) (models.ResumeData, error)
	EnhanceSection(ctx context.Context, sectionName, text string) ([]string, error)
	ElevatorPitch(ctx context.Context, data models.ResumeData) (string, error)
	Render(ctx context.Context, format string, data models.ResumeData, style models.StyleOptions) (*Document, error)
}

// Builder keeps each user's resume and its undo history
type Builder struct {
	store        storage.ResumeStore
	api          API
	blobs        storage.BlobStore
	maxSnapshots int
	now          func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBuilder creates a resume builder. blobs may be nil.
func NewBuilder(store storage.ResumeStore, api API, blobs storage.BlobStore) *Builder {
	return &Builder{
		store:        store,
		api:          api,
		blobs:        blobs,
		maxSnapshots: DefaultMaxSnapshots,
		now:          time.Now,
		locks:        make(map[string]*sync.Mutex),
	}
}

func (b *Builder) lock(userID string) func() {
	b.mu.Lock()
	l, ok := b.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		b.locks[userID] = l
	}
	b.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func state(h *History) models.ResumeDraftResponse {
	return models.ResumeDraftResponse{
		Resume:  h.Current(),
		CanUndo: h.CanUndo(),
		CanRedo: h.CanRedo(),
	}
}

func (b *Builder) load(ctx context.Context, userID string) (*History, error) {
	draft, err := b.store.GetResumeDraft(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load resume draft: %w", err)
	}
	return FromDraft(draft, b.maxSnapshots), nil
}

func (b *Builder) save(ctx context.Context, userID string, h *History) error {
	if err := b.store.SaveResumeDraft(ctx, h.Draft(userID, b.now().UTC())); err != nil {
		return fmt.Errorf("failed to save resume draft: %w", err)
	}
	return nil
}

// update loads the history, applies change and persists it when change
// reports a modification
func (b *Builder) update(ctx context.Context, userID string, change func(*History) (bool, error)) (models.ResumeDraftResponse, error) {
	unlock := b.lock(userID)
	defer unlock()

	h, err := b.load(ctx, userID)
	if err != nil {
		return models.ResumeDraftResponse{}, err
	}
	changed, err := change(h)
	if err != nil {
		return models.ResumeDraftResponse{}, err
	}
	if changed {
		if err := b.save(ctx, userID, h); err != nil {
			return models.ResumeDraftResponse{}, err
		}
	}
	return state(h), nil
}

// Load returns the current resume and whether undo and redo are possible
func (b *Builder) Load(ctx context.Context, userID string) (models.ResumeDraftResponse, error) {
	return b.update(ctx, userID, func(*History) (bool, error) { return false, nil })
}

// Edit records a new resume state. An identical state adds no snapshot.
func (b *Builder) Edit(ctx context.Context, userID string, data models.ResumeData) (models.ResumeDraftResponse, error) {
	EnsureIDs(&data)
	return b.update(ctx, userID, func(h *History) (bool, error) {
		return h.Push(data), nil
	})
}

// Undo steps back one snapshot; at the start of history it is a no-op
func (b *Builder) Undo(ctx context.Context, userID string) (models.ResumeDraftResponse, error) {
	return b.update(ctx, userID, func(h *History) (bool, error) {
		return h.Undo(), nil
	})
}

// Redo steps forward one snapshot; at the end of history it is a no-op
func (b *Builder) Redo(ctx context.Context, userID string) (models.ResumeDraftResponse, error) {
	return b.update(ctx, userID, func(h *History) (bool, error) {
		return h.Redo(), nil
	})
}

// Parse sends a resume file to the parsing service
func (b *Builder) Parse(ctx context.Context, fileName string, size int64, body io.Reader) (models.ResumeData, error) {
	if err := utils.ValidateUpload(utils.UploadResume, fileName, size); err != nil {
		return models.ResumeData{}, &models.ValidationError{Fields: []string{"file"}, Message: err.Error()}
	}
	data, err := b.api.ParseResume(ctx, fileName, body)
	if err != nil {
		return models.ResumeData{}, fmt.Errorf("failed to parse resume: %w", err)
	}
	return data, nil
}

// Import replaces the current resume with a parsed upload. The import is
// always recorded, even when it matches the current state.
func (b *Builder) Import(ctx context.Context, userID, fileName string, size int64, body io.Reader) (models.ResumeDraftResponse, error) {
	data, err := b.Parse(ctx, fileName, size, body)
	if err != nil {
		return models.ResumeDraftResponse{}, err
	}
	log.Printf("[ResumeBuilder] Imported '%s' for %s: %d experience, %d education entries",
		fileName, userID, len(data.Experience), len(data.Education))
	return b.update(ctx, userID, func(h *History) (bool, error) {
		h.ForcePush(data)
		return true, nil
	})
}

// Enhance asks for rewordings of one section's text
func (b *Builder) Enhance(ctx context.Context, sectionName, text string) ([]string, error) {
	section, ok := canonicalSection(sectionName)
	if !ok {
		return nil, &models.ValidationError{
			Fields:  []string{"sectionName"},
			Message: fmt.Sprintf("section %q cannot be enhanced", sectionName),
		}
	}
	plain := stripMarkup(text)
	if plain == "" {
		return nil, &models.ValidationError{
			Fields:  []string{"textToEnhance"},
			Message: "Please enter some text to enhance.",
		}
	}

	versions, err := b.api.EnhanceSection(ctx, section, plain)
	if err != nil {
		return nil, fmt.Errorf("failed to enhance section: %w", err)
	}
	return versions, nil
}

// Pitch generates an elevator pitch from the user's current resume
func (b *Builder) Pitch(ctx context.Context, userID string) (string, error) {
	current, err := b.Load(ctx, userID)
	if err != nil {
		return "", err
	}
	pitch, err := b.api.ElevatorPitch(ctx, current.Resume)
	if err != nil {
		return "", fmt.Errorf("failed to generate elevator pitch: %w", err)
	}
	return pitch, nil
}

// Export renders the user's current resume as pdf or docx
func (b *Builder) Export(ctx context.Context, userID, format string, style models.StyleOptions) (*Document, error) {
	format = strings.ToLower(format)
	if _, ok := exportContentTypes[format]; !ok {
		return nil, &models.ValidationError{
			Fields:  []string{"format"},
			Message: fmt.Sprintf("unsupported export format %q, use pdf or docx", format),
		}
	}
	current, err := b.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	doc, err := b.api.Render(ctx, format, current.Resume, style)
	if err != nil {
		return nil, fmt.Errorf("failed to render resume: %w", err)
	}
	return doc, nil
}

// UploadPitchVideo stores a recorded elevator pitch and returns its URL
func (b *Builder) UploadPitchVideo(ctx context.Context, actor models.Actor, fileName string, size int64, body io.Reader) (string, error) {
	if b.blobs == nil {
		return "", ErrUploadsDisabled
	}
	if err := utils.ValidateUpload(utils.UploadVideo, fileName, size); err != nil {
		return "", &models.ValidationError{Fields: []string{"video"}, Message: err.Error()}
	}

	url, err := b.blobs.Upload(ctx, storage.Upload{
		Folder:      "pitches",
		OwnerID:     actor.UserID,
		FileName:    fileName,
		ContentType: utils.ContentType(fileName),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload pitch video: %w", err)
	}
	log.Printf("[ResumeBuilder] Uploaded pitch video for %s", actor.UserID)
	return url, nil
}

// stripMarkup reduces rich text to trimmed markdown; markup with no text is ""
func stripMarkup(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(md)
}
