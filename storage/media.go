// Package storage keeps uploaded media on the local filesystem under
// uploads/<userId>/..., with names prefixed by the owner's id so deletion
// can verify ownership from the filename alone.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxFileSize = 20 << 20 // 20MB

var (
	ErrForbidden   = errors.New("storage: file not owned by user")
	ErrBadType     = errors.New("storage: only .png, .jpg, .jpeg and .mp4 allowed")
	ErrTooLarge    = errors.New("storage: file exceeds size limit")
	ErrBadFilename = errors.New("storage: invalid file name")
)

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"video/mp4":  "mp4",
}

type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// SavePost writes a post media file to <root>/<userId>/posts/ and returns
// the stored filename and its public dest path.
func (s *Store) SavePost(userID string, fh *multipart.FileHeader) (name, dest string, err error) {
	name, err = s.save(userID, filepath.Join(userID, "posts"), fh)
	if err != nil {
		return "", "", err
	}
	return name, path(s.root, userID, "posts", name), nil
}

// SaveAvatar writes an avatar to <root>/<userId>/ and returns its dest path.
func (s *Store) SaveAvatar(userID string, fh *multipart.FileHeader) (string, error) {
	name, err := s.save(userID, userID, fh)
	if err != nil {
		return "", err
	}
	return path(s.root, userID, name), nil
}

func (s *Store) save(userID, dir string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrTooLarge
	}
	ext, ok := allowedTypes[fh.Header.Get("Content-Type")]
	if !ok {
		return "", ErrBadType
	}

	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", err
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	name := fmt.Sprintf("%s_%s_%d.%s", userID, suffix, time.Now().UnixMilli(), ext)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(filepath.Join(target, name))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return name, nil
}

// DeletePost unlinks a stored post file. The filename's <userId>_ prefix
// must match the caller.
func (s *Store) DeletePost(userID, name string) error {
	if name != filepath.Base(name) || name == "." || name == "" {
		return ErrBadFilename
	}
	if strings.Split(name, "_")[0] != userID {
		return ErrForbidden
	}
	return os.Remove(filepath.Join(s.root, userID, "posts", name))
}

// Owned reports whether dest lies inside the user's upload directory.
func (s *Store) Owned(userID, dest string) bool {
	rel, ok := strings.CutPrefix(filepath.ToSlash(dest), s.root+"/")
	if !ok {
		return false
	}
	rel = filepath.Clean(rel)
	return strings.HasPrefix(rel, userID+"/")
}

// Remove unlinks a file by its recorded dest path ("uploads/..." form).
// Missing files are ignored so cascades stay idempotent.
func (s *Store) Remove(dest string) error {
	rel, ok := strings.CutPrefix(filepath.ToSlash(dest), s.root+"/")
	if !ok {
		return ErrBadFilename
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return ErrBadFilename
	}
	err := os.Remove(filepath.Join(s.root, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveAll drops the user's whole directory tree.
func (s *Store) RemoveAll(userID string) error {
	if userID == "" || userID == "." || userID == ".." || userID != filepath.Base(userID) {
		return ErrBadFilename
	}
	return os.RemoveAll(filepath.Join(s.root, userID))
}

func path(parts ...string) string {
	return strings.Join(parts, "/")
}
