// Package files stores uploaded attachments on disk. A file is written
// under a unique name before any message references it, so a failed
// upload never leaves a dangling file message.
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	ErrTypeNotAllowed = errors.New("file type not allowed")
	ErrFileTooLarge   = errors.New("file too large")
	ErrEmptyFilename  = errors.New("no file name")
	ErrNotFound       = errors.New("file not found")
)

// allowedExtensions mirrors the upload policy: documents, images and
// archives only.
var allowedExtensions = map[string]bool{
	"txt": true, "pdf": true,
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true,
	"zip": true, "rar": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes uploads into a single directory, naming each file
// {timestamp}_{sender}_{sanitized original name}.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, maxSize: maxSize}, nil
}

// MaxSize returns the per-file byte cap.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Allowed reports whether the file's extension is accepted.
func Allowed(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return false
	}
	return allowedExtensions[strings.ToLower(name[i+1:])]
}

// Sanitize reduces a client-supplied file name to a safe basename.
func Sanitize(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Save streams r to disk and returns the stored name and byte count.
// The data lands in a temp file first and is renamed into place, so a
// partial write is never visible under the final name.
func (s *Store) Save(r io.Reader, sender, originalName string) (string, int64, error) {
	original := Sanitize(originalName)
	if original == "" {
		return "", 0, ErrEmptyFilename
	}
	if !Allowed(original) {
		return "", 0, fmt.Errorf("%w: %s", ErrTypeNotAllowed, original)
	}

	// Underscores delimit the stored-name fields, so the sender segment
	// must not contain any.
	senderPart := strings.ReplaceAll(Sanitize(sender), "_", "-")
	stored := fmt.Sprintf("%s_%s_%s",
		time.Now().Format("20060102_150405"),
		senderPart,
		original,
	)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())

	// Copy one byte past the cap so an oversize stream is detected
	// without buffering it whole.
	n, err := io.Copy(tmp, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		tmp.Close()
		return "", 0, err
	}
	if n > s.maxSize {
		tmp.Close()
		return "", 0, fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, s.maxSize)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, err
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, stored)); err != nil {
		return "", 0, err
	}
	return stored, n, nil
}

// Path resolves a stored name to its on-disk path, rejecting anything
// that escapes the upload directory.
func (s *Store) Path(stored string) (string, error) {
	if stored == "" || stored != filepath.Base(stored) {
		return "", ErrNotFound
	}
	p := filepath.Join(s.dir, stored)
	if _, err := os.Stat(p); err != nil {
		return "", ErrNotFound
	}
	return p, nil
}

// OriginalName recovers the display name from a stored name of the form
// {date}_{time}_{sender}_{original}. Unparseable names are returned
// whole.
func OriginalName(stored string) string {
	parts := strings.SplitN(stored, "_", 4)
	if len(parts) == 4 {
		return parts[3]
	}
	return stored
}
