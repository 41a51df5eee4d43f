package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// UploadKind groups the formats accepted for one kind of upload
type UploadKind string

const (
	UploadResume UploadKind = "resume"
	UploadVideo  UploadKind = "video"
	UploadLogo   UploadKind = "logo"
)

// MaxUploadBytes caps any single uploaded file
const MaxUploadBytes = 25 << 20

var allowedExtensions = map[UploadKind][]string{
	UploadResume: {".pdf", ".doc", ".docx", ".txt"},
	UploadVideo:  {".mp4", ".webm", ".mov"},
	UploadLogo:   {".png", ".jpg", ".jpeg", ".svg", ".webp"},
}

// IsSupportedFormat reports whether filename has an extension accepted for kind
func IsSupportedFormat(kind UploadKind, filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range allowedExtensions[kind] {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ValidateUpload checks the format and size of an uploaded file
func ValidateUpload(kind UploadKind, filename string, size int64) error {
	if !IsSupportedFormat(kind, filename) {
		return fmt.Errorf("unsupported %s format %q, allowed: %s",
			kind, filepath.Ext(filename), strings.Join(allowedExtensions[kind], ", "))
	}
	if size > MaxUploadBytes {
		return fmt.Errorf("file too large: %d bytes (max %d)", size, MaxUploadBytes)
	}
	return nil
}

// ContentType maps a file name to its MIME type
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// SanitizePathSegment makes an identifier safe to use inside an object name
func SanitizePathSegment(s string) string {
	s = strings.ReplaceAll(s, "@", "_at_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// SafeFileName strips directories and characters that break Content-Disposition
func SafeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '\r', '\n':
			return -1
		}
		return r
	}, name)
	if name == "." || name == "" {
		return "file"
	}
	return name
}
