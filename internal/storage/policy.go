package storage

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// FilePolicy represents file upload policy constraints
type FilePolicy struct {
	MaxFileMB  float64
	MimeTypes  []string
	Extensions []string
}

// ImagePolicy admits the image formats accepted as identity documents
var ImagePolicy = FilePolicy{
	MaxFileMB:  10,
	MimeTypes:  []string{"image/jpeg", "image/png", "image/webp"},
	Extensions: []string{"jpg", "jpeg", "png", "webp"},
}

// ValidateFile validates a file against the policy; a non-positive size skips the size check
func (fp FilePolicy) ValidateFile(fileName, contentType string, fileSizeBytes int64) error {
	if fp.MaxFileMB > 0 && fileSizeBytes > 0 {
		maxBytes := int64(fp.MaxFileMB * 1024 * 1024)
		if fileSizeBytes > maxBytes {
			return fmt.Errorf("file size %d bytes exceeds maximum %d bytes (%.2f MB)",
				fileSizeBytes, maxBytes, fp.MaxFileMB)
		}
	}

	if len(fp.MimeTypes) > 0 && !fp.matchesMimeType(contentType) {
		return fmt.Errorf("content type %s is not allowed. Allowed types: %v",
			contentType, fp.MimeTypes)
	}

	if len(fp.Extensions) > 0 && !fp.matchesExtension(fileName) {
		return fmt.Errorf("file extension is not allowed. Allowed extensions: %v",
			fp.Extensions)
	}

	return nil
}

// matchesMimeType checks if contentType matches any of the allowed MIME type patterns
func (fp FilePolicy) matchesMimeType(contentType string) bool {
	// Parse the content type (handle parameters like "image/png; charset=utf-8")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}

	for _, allowed := range fp.MimeTypes {
		// Support wildcard patterns like "image/*"
		if strings.HasSuffix(allowed, "/*") {
			prefix := strings.TrimSuffix(allowed, "/*")
			if strings.HasPrefix(mediaType, prefix+"/") {
				return true
			}
		} else if mediaType == allowed {
			return true
		}
	}
	return false
}

func (fp FilePolicy) matchesExtension(fileName string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range fp.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
