package resume

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/careerverse/backend/config"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/utils"
)

// Export formats
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// maxResponseBytes caps what is read back from the resume service
const maxResponseBytes = 32 << 20

// ErrUnsupportedFormat is returned for export formats other than pdf and docx
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ServiceError is a non-2xx answer from the resume service
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("resume service returned %d: %s", e.StatusCode, e.Message)
}

// Document is a rendered resume file
type Document struct {
	Data        []byte
	FileName    string
	ContentType string
}

// Client talks to the external resume parsing and rendering API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a resume service client from config
func NewClient(cfg *config.Config) *Client {
	burst := int(cfg.ResumeServiceRPS)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.ResumeServiceURL, "/"),
		httpClient: utils.NewHTTPClient(cfg.HTTPTimeout()),
		limiter:    rate.NewLimiter(rate.Limit(cfg.ResumeServiceRPS), burst),
	}
}

// ParseResume uploads a resume file and returns the normalized result
func (c *Client) ParseResume(ctx context.Context, fileName string, body io.Reader) (models.ResumeData, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return models.ResumeData{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return models.ResumeData{}, fmt.Errorf("failed to read resume file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.ResumeData{}, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var resp struct {
		ParsedData json.RawMessage `json:"parsedData"`
	}
	if err := c.doJSON(ctx, "/parse-resume", mw.FormDataContentType(), &buf, &resp); err != nil {
		return models.ResumeData{}, err
	}

	log.Printf("[ResumeClient] Parsed '%s' (%d bytes of structured data)", fileName, len(resp.ParsedData))
	return Normalize(resp.ParsedData), nil
}

// EnhanceSection asks for rewordings of one resume section
func (c *Client) EnhanceSection(ctx context.Context, sectionName, text string) ([]string, error) {
	payload := map[string]string{"sectionName": sectionName, "textToEnhance": text}
	var resp models.EnhanceResponse
	if err := c.postJSON(ctx, "/enhance-section", payload, &resp); err != nil {
		return nil, err
	}
	if resp.EnhancedVersions == nil {
		resp.EnhancedVersions = []string{}
	}
	return resp.EnhancedVersions, nil
}

// ElevatorPitch generates a short pitch from the whole resume
func (c *Client) ElevatorPitch(ctx context.Context, data models.ResumeData) (string, error) {
	payload := map[string]interface{}{"resumeData": data}
	var resp models.ElevatorPitchResponse
	if err := c.postJSON(ctx, "/generate-elevator-pitch", payload, &resp); err != nil {
		return "", err
	}
	return resp.ElevatorPitch, nil
}

// Render produces a pdf or docx document of the resume
func (c *Client) Render(ctx context.Context, format string, data models.ResumeData, style models.StyleOptions) (*Document, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	body, err := renderPayload(data, style)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, "/generate-"+format, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered document: %w", err)
	}

	return &Document{
		Data:        raw,
		FileName:    ExportFileName(data, format),
		ContentType: contentType,
	}, nil
}

var exportContentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ExportFileName names a rendered document after the resume owner
func ExportFileName(data models.ResumeData, format string) string {
	name := strings.Join(strings.Fields(data.Personal.Name), "_")
	if name == "" {
		name = "resume"
	}
	return name + "." + format
}

// renderPayload flattens the resume and adds styleOptions at the top level
func renderPayload(data models.ResumeData, style models.StyleOptions) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}
	doc["styleOptions"] = WithDefaults(style)
	return json.Marshal(doc)
}

// WithDefaults fills unset style options
func WithDefaults(style models.StyleOptions) models.StyleOptions {
	if style.FontFamily == "" {
		style.FontFamily = "Calibri, sans-serif"
	}
	if style.FontSize <= 0 {
		style.FontSize = 11
	}
	if style.AccentColor == "" {
		style.AccentColor = "#34495e"
	}
	return style
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.doJSON(ctx, path, "application/json", bytes.NewReader(body), out)
}

func (c *Client) doJSON(ctx context.Context, path, contentType string, body io.Reader, out interface{}) error {
	resp, err := c.send(ctx, path, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// send waits for the limiter, posts, and turns non-2xx answers into ServiceError
func (c *Client) send(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call resume service %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, serviceError(resp)
	}
	return resp, nil
}

func serviceError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	log.Printf("[ResumeClient] %s returned %d: %s", resp.Request.URL.Path, resp.StatusCode, msg)
	return &ServiceError{StatusCode: resp.StatusCode, Message: msg}
}
