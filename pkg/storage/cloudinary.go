package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// FileStorage defines the contract for the submission file store
// (Cloudinary implementation).
type FileStorage interface {
	// UploadFile uploads a file from reader and returns the secure URL.
	// folder is a logical folder in storage (e.g. "submissions").
	UploadFile(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteFile deletes a file from storage using its URL.
	DeleteFile(ctx context.Context, fileURL string) error
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates a Cloudinary-backed implementation of FileStorage.
// It expects CLOUDINARY_URL or individual CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY /
// CLOUDINARY_API_SECRET to be configured in environment variables.
func NewCloudinaryStorage() (FileStorage, error) {
	// cloudinary.New() automatically reads CLOUDINARY_URL from environment if present.
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld}, nil
}

// UploadFile uploads a submission file to Cloudinary and returns the secure URL.
func (s *cloudinaryStorage) UploadFile(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileName)

	params := uploader.UploadParams{
		Folder:         folder,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		PublicID:       publicID,
		Overwrite:      api.Bool(false),
		// Submissions can be PDFs, archives or images; let Cloudinary detect.
		ResourceType: "auto",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

// DeleteFile deletes a file from Cloudinary.
func (s *cloudinaryStorage) DeleteFile(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := s.extractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	// Invalidate: true helps to clear CDN cache
	params := uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// extractPublicID pulls the public ID back out of a Cloudinary delivery URL.
func (s *cloudinaryStorage) extractPublicID(fileURL string) string {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.TrimPrefix(parsed.Path, "/"), "/")
	// Path shape: /<cloud>/<resource_type>/upload/v<version>/<folder>/<public_id>.<ext>
	uploadIdx := -1
	for i, part := range parts {
		if part == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx == -1 || uploadIdx+1 >= len(parts) {
		return ""
	}

	rest := parts[uploadIdx+1:]
	// Skip the version segment when present.
	if len(rest) > 0 && strings.HasPrefix(rest[0], "v") {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return ""
	}

	joined := strings.Join(rest, "/")
	ext := filepath.Ext(joined)
	return strings.TrimSuffix(joined, ext)
}
