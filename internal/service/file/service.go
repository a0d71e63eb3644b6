package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/leave-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	// maxImageDimension bounds the longest side of stored image documents.
	maxImageDimension = 2400
	// maxImagePixels bounds the decoded size of an uploaded image.
	maxImagePixels = 40_000_000
)

var documentContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// imageFormats maps image extensions to the format image.DecodeConfig reports.
var imageFormats = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
}

type FileService interface {
	// UploadLeaveDocument stores a supporting document and returns its storage key
	UploadLeaveDocument(ctx context.Context, userID string, doc leave.DocumentUpload) (string, error)

	// OpenLeaveDocument opens a stored document by key
	OpenLeaveDocument(ctx context.Context, key string) (leave.DocumentFile, error)

	DeleteFile(ctx context.Context, key string) error
}

type fileServiceImpl struct {
	storage        storage.FileStorage
	maxUploadBytes int64
}

func NewFileService(storage storage.FileStorage, maxUploadBytes int64) FileService {
	return &fileServiceImpl{
		storage:        storage,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadLeaveDocument validates the extension and size, downscales oversized
// images and stores the file under leave/<userID>/<uuid><ext>.
func (s *fileServiceImpl) UploadLeaveDocument(ctx context.Context, userID string, doc leave.DocumentUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	contentType, ok := documentContentTypes[ext]
	if !ok {
		return "", leave.ErrUnsupportedDocument
	}
	if doc.Size > s.maxUploadBytes {
		return "", leave.ErrDocumentTooLarge
	}

	buffer, err := io.ReadAll(io.LimitReader(doc.Content, s.maxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if int64(len(buffer)) > s.maxUploadBytes {
		return "", leave.ErrDocumentTooLarge
	}
	if len(buffer) == 0 {
		return "", leave.ErrUnsupportedDocument
	}

	if ext != ".pdf" {
		buffer, err = downscaleImage(buffer, ext)
		if err != nil {
			return "", err
		}
	}

	key := path.Join("leave", userID, uuid.New().String()+ext)
	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(buffer), key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload leave document: %w", err)
	}

	return uploadedPath, nil
}

func (s *fileServiceImpl) OpenLeaveDocument(ctx context.Context, key string) (leave.DocumentFile, error) {
	content, err := s.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidPath) {
			return leave.DocumentFile{}, leave.ErrDocumentNotFound
		}
		return leave.DocumentFile{}, fmt.Errorf("failed to open leave document: %w", err)
	}

	contentType, ok := documentContentTypes[strings.ToLower(path.Ext(key))]
	if !ok {
		contentType = "application/octet-stream"
	}

	return leave.DocumentFile{
		Name:        path.Base(key),
		ContentType: contentType,
		Content:     content,
	}, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// downscaleImage shrinks images whose longest side exceeds maxImageDimension and
// re-encodes them in their original format. Smaller images are returned as-is.
// The content must be in the format its extension names and stay within
// maxImagePixels.
func downscaleImage(buffer []byte, ext string) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(buffer))
	if err != nil {
		return nil, leave.ErrUnsupportedDocument
	}
	if format != imageFormats[ext] {
		return nil, leave.ErrUnsupportedDocument
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, leave.ErrUnsupportedDocument
	}
	if cfg.Width <= maxImageDimension && cfg.Height <= maxImageDimension {
		return buffer, nil
	}

	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, leave.ErrUnsupportedDocument
	}

	width, height := cfg.Width, cfg.Height
	if width >= height {
		height = max(1, height*maxImageDimension/width)
		width = maxImageDimension
	} else {
		width = max(1, width*maxImageDimension/height)
		height = maxImageDimension
	}

	resized := resizeImage(img, width, height)

	buf := new(bytes.Buffer)
	switch format {
	case "png":
		err = png.Encode(buf, resized)
	default:
		err = jpeg.Encode(buf, resized, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
