package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/vidtube/backend/internal/apperr"
)

const multipartMemory = 32 << 20

// stagedFiles maps form fields to files written under the upload directory.
type stagedFiles map[string]string

// cleanup removes whatever the media store did not already consume.
func (s stagedFiles) cleanup() {
	for _, path := range s {
		_ = os.Remove(path)
	}
}

// stageUploads copies the named multipart file fields to dir. Absent fields
// are skipped; the caller decides which ones are required.
func stageUploads(w http.ResponseWriter, r *http.Request, dir string, maxBytes int64, fields ...string) (stagedFiles, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Newf(apperr.KindValidationFailed, "upload exceeds %d bytes", maxBytes)
		}
		return nil, apperr.Wrap(apperr.KindValidationFailed, "invalid multipart form", err)
	}

	staged := stagedFiles{}
	for _, field := range fields {
		path, err := stageFile(r, dir, field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			staged.cleanup()
			return nil, err
		}
		staged[field] = path
	}
	return staged, nil
}

func stageFile(r *http.Request, dir, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	out, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStoreFailure, "failed to stage upload", fmt.Errorf("create temp file: %w", err))
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		_ = os.Remove(out.Name())
		return "", apperr.Wrap(apperr.KindStoreFailure, "failed to stage upload", fmt.Errorf("copy %s: %w", field, err))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(out.Name())
		return "", apperr.Wrap(apperr.KindStoreFailure, "failed to stage upload", fmt.Errorf("close %s: %w", field, err))
	}
	return out.Name(), nil
}
