package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	appErr "docqa/internal/pkg/errors"
)

var allowedExts = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".pdf":  {},
	".docx": {},
}

// ValidateFile rejects uploads before any parsing work happens.
func ValidateFile(filename string, size int64, maxSize int64) error {
	name := strings.TrimSpace(filename)
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("%w: invalid filename", appErr.ErrInvalid)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExts[ext]; !ok {
		return fmt.Errorf("%w: unsupported file type %s", appErr.ErrInvalid, ext)
	}
	if size <= 0 {
		return fmt.Errorf("%w: empty file", appErr.ErrInvalid)
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: file exceeds size limit", appErr.ErrInvalid)
	}
	return nil
}
