package services

import (
	"mime"
	"path/filepath"
	"strings"
)

// Photo is an uploaded image held in memory.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

func validatePhoto(p *Photo, maxSize int64) error {
	if p == nil || len(p.Data) == 0 {
		return invalid("photo is empty")
	}
	if !strings.HasPrefix(p.ContentType, "image/") {
		return invalid("only images are allowed")
	}
	if maxSize > 0 && int64(len(p.Data)) > maxSize {
		return invalid("photo is too large")
	}
	return nil
}

// photoExt picks the object name extension: the uploaded file's own, else
// one derived from the content type.
func photoExt(p *Photo) string {
	if ext := strings.ToLower(filepath.Ext(p.Filename)); ext != "" {
		return ext
	}
	switch p.ContentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if exts, err := mime.ExtensionsByType(p.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
