package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	assert.NoError(t, ValidateUpload(UploadResume, "cv.PDF", 1024))
	assert.NoError(t, ValidateUpload(UploadVideo, "pitch.webm", 1024))
	assert.Error(t, ValidateUpload(UploadResume, "cv.exe", 1024))
	assert.Error(t, ValidateUpload(UploadLogo, "logo.png", MaxUploadBytes+1))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("resume.pdf"))
	assert.Equal(t, "image/jpeg", ContentType("logo.JPG"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}

func TestSanitizeAndSafeFileName(t *testing.T) {
	assert.Equal(t, "jane_at_example_com", SanitizePathSegment("jane@example.com"))
	assert.Equal(t, "evil.pdf", SafeFileName("../../evil.pdf"))
	assert.Equal(t, "Jane Doe_resume.pdf", SafeFileName(`Jane "Doe"_resume.pdf`))
	assert.Equal(t, "file", SafeFileName("  "))
}

func TestNewHTTPClient_DefaultHeaders(t *testing.T) {
	var got, accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/moved" {
			http.Redirect(w, r, "/elsewhere", http.StatusFound)
			return
		}
		got = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
	}))
	defer srv.Close()

	client := NewHTTPClient(5 * time.Second)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, UserAgent, got)
	assert.Equal(t, "application/json", accept)

	resp, err = client.Get(srv.URL + "/moved")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode, "redirects are not followed")
}
