package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxUploadSize caps a single upload at 16 MiB.
const maxUploadSize = 16 << 20

// allowedExtensions are the upload types accepted for complaint photos and
// worker proof files.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".mp4":  true,
	".mov":  true,
	".avi":  true,
}

// DiskStore writes uploads under a base directory and hands back relative
// paths for storage on the complaint document.
type DiskStore struct {
	baseDir string
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(baseDir string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

// Save stores one uploaded file. A file with a disallowed extension is
// skipped silently (ok=false, nil error): the submission succeeds without
// the attachment rather than failing outright. Files over the size cap are
// rejected the same way.
func (s *DiskStore) Save(file multipart.File, header *multipart.FileHeader) (path string, ok bool, err error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", false, nil
	}
	if header.Size > maxUploadSize {
		return "", false, nil
	}

	name := fmt.Sprintf("%s_%s%s", time.Now().UTC().Format("20060102150405"), uuid.NewString(), ext)
	dst := filepath.Join(s.baseDir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", false, fmt.Errorf("creating upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(file, maxUploadSize+1)); err != nil {
		os.Remove(dst)
		return "", false, fmt.Errorf("writing upload file: %w", err)
	}
	return name, true, nil
}

// BaseDir returns the directory uploads are served from.
func (s *DiskStore) BaseDir() string {
	return s.baseDir
}
