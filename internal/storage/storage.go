package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxImageSize = 5 * 1024 * 1024 // 5 MB

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("file type is not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// AllowedImageTypes defines which image types are accepted for ads and logos
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// BlobStore keeps uploaded files and hands out public URLs for them.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Object describes a stored file.
type Object struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// Images validates uploaded images and writes them to a BlobStore under
// <prefix>/YYYY/MM/DD/<uuid>_<name>.<ext>.
type Images struct {
	store   BlobStore
	maxSize int64
	now     func() time.Time
}

func NewImages(store BlobStore) *Images {
	return &Images{store: store, maxSize: MaxImageSize, now: time.Now}
}

func (i *Images) Save(ctx context.Context, prefix string, fileHeader *multipart.FileHeader) (*Object, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > i.maxSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return i.SaveReader(ctx, prefix, fileHeader.Filename, file, fileHeader.Size)
}

// SaveReader stores body after sniffing its content type from the first 512 bytes.
func (i *Images) SaveReader(ctx context.Context, prefix, filename string, body io.Reader, size int64) (*Object, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(body, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyFile
	}

	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedImageTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}

	key := i.buildKey(prefix, filename, mimeType)
	url, err := i.store.Put(ctx, key, io.MultiReader(bytes.NewReader(buf[:n]), body), size, mimeType)
	if err != nil {
		return nil, err
	}

	return &Object{Key: key, URL: url, ContentType: mimeType, Size: size}, nil
}

func (i *Images) buildKey(prefix, filename, mimeType string) string {
	now := i.now()
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || mimeToExt(mimeType) != normaliseExt(ext) {
		ext = mimeToExt(mimeType)
	}
	name := fmt.Sprintf("%s_%s%s", uuid.NewString(), sanitizeName(filename), ext)

	parts := []string{fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day()), name}
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" || name == "." || name == "_" {
		return "file"
	}
	return name
}

func normaliseExt(ext string) string {
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

func (i *Images) Delete(ctx context.Context, key string) error {
	return i.store.Delete(ctx, key)
}
