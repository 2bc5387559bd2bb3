package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/triplog/backend/pkg/apperror"
)

// Kind identifies the upload field a file arrived on and selects the
// target directory and the allow-list applied to it.
type Kind string

const (
	KindAvatar Kind = "avatar"
	KindImages Kind = "images"
	KindVideo  Kind = "video"
)

// DefaultAvatarPath is the placeholder every new user starts with.
// Delete refuses to remove it so profile updates never reclaim the shared file.
const DefaultAvatarPath = "uploads/avatars/avatar-default.png"

// MaxFileSize is the per-file upload ceiling (100 MB).
const MaxFileSize = 100 << 20

// FileStorage defines the contract for persisting uploaded media.
// Implementations only know about bytes and upload policy; ownership and
// lifecycle rules live with the callers.
type FileStorage interface {
	// Save validates the file against the allow-list for kind and writes it
	// under a kind-scoped directory, returning the stored reference path.
	Save(ctx context.Context, file *multipart.FileHeader, kind Kind) (string, error)
	// Delete removes a stored file. It is idempotent: an empty reference,
	// the default avatar placeholder, or an already-absent file all return
	// false without error. OS-level failures are logged, never raised.
	Delete(ctx context.Context, ref string) bool
	// DeleteMany applies Delete to each reference without short-circuiting.
	DeleteMany(ctx context.Context, refs []string)
}

var allowedImageExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true,
}

var allowedVideoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".wmv": true, ".mkv": true,
}

type diskStorage struct {
	baseDir string
}

// NewDiskStorage creates a local-disk implementation of FileStorage rooted
// at baseDir. Kind directories are created lazily on first save.
func NewDiskStorage(baseDir string) FileStorage {
	return &diskStorage{baseDir: baseDir}
}

func (s *diskStorage) Save(ctx context.Context, file *multipart.FileHeader, kind Kind) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	mimeType := file.Header.Get("Content-Type")

	switch kind {
	case KindAvatar, KindImages:
		if !allowedImageExts[ext] || !strings.HasPrefix(mimeType, "image/") {
			return "", fmt.Errorf("invalid file type %q, only images are allowed (JPEG, PNG, GIF, WEBP): %w", file.Filename, apperror.ErrUnsupportedMedia)
		}
	case KindVideo:
		if !allowedVideoExts[ext] || !strings.HasPrefix(mimeType, "video/") {
			return "", fmt.Errorf("invalid file type %q, only videos are allowed (MP4, MOV, AVI, WMV, MKV): %w", file.Filename, apperror.ErrUnsupportedMedia)
		}
	default:
		return "", fmt.Errorf("unknown upload field %q: %w", kind, apperror.ErrUnsupportedMedia)
	}

	if file.Size > MaxFileSize {
		return "", fmt.Errorf("file %q exceeds the %d byte limit: %w", file.Filename, int64(MaxFileSize), apperror.ErrPayloadTooLarge)
	}

	dir := s.kindDir(kind)
	if err := os.MkdirAll(filepath.Join(s.baseDir, filepath.FromSlash(dir)), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory %s: %w", dir, apperror.ErrStorage)
	}

	// field-{epochMillis}-{rand}.{ext} gives practical uniqueness without a counter
	name := fmt.Sprintf("%s-%d-%d%s", kind, time.Now().UnixMilli(), rand.Int63n(1_000_000_000), ext)
	ref := path.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", apperror.ErrStorage)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.baseDir, filepath.FromSlash(ref)))
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", ref, apperror.ErrStorage)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", ref, apperror.ErrStorage)
	}

	return ref, nil
}

func (s *diskStorage) Delete(ctx context.Context, ref string) bool {
	if ref == "" || ref == DefaultAvatarPath {
		return false
	}

	full := filepath.Join(s.baseDir, filepath.FromSlash(ref))
	if _, err := os.Stat(full); os.IsNotExist(err) {
		return false
	}

	if err := os.Remove(full); err != nil {
		log.Printf("failed to delete asset %s: %v", ref, err)
		return false
	}

	return true
}

func (s *diskStorage) DeleteMany(ctx context.Context, refs []string) {
	for _, ref := range refs {
		s.Delete(ctx, ref)
	}
}

func (s *diskStorage) kindDir(kind Kind) string {
	switch kind {
	case KindAvatar:
		return "uploads/avatars"
	case KindImages:
		return "uploads/images"
	case KindVideo:
		return "uploads/videos"
	}
	return "uploads/others"
}
