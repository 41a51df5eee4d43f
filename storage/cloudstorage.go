package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/careerverse/backend/config"
	"github.com/careerverse/backend/utils"
)

// CloudStorageClient stores uploads in a Google Cloud Storage bucket
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

// NewCloudStorageClient creates a new Cloud Storage client
func NewCloudStorageClient(ctx context.Context, cfg *config.Config) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Storage client: %w", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: cfg.UploadBucket,
	}, nil
}

// Close closes the Cloud Storage client
func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

// ObjectName builds {folder}/{owner}/{unix}_{file}
func ObjectName(upload Upload, now time.Time) string {
	name := utils.SafeFileName(upload.FileName)
	return fmt.Sprintf("%s/%s/%d_%s", upload.Folder, utils.SanitizePathSegment(upload.OwnerID), now.Unix(), name)
}

// Upload writes the file and returns its public URL
func (c *CloudStorageClient) Upload(ctx context.Context, upload Upload) (string, error) {
	objectName := ObjectName(upload, time.Now())

	wc := c.client.Bucket(c.bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = upload.ContentType
	if wc.ContentType == "" {
		wc.ContentType = utils.ContentType(upload.FileName)
	}

	if _, err := io.Copy(wc, upload.Body); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	log.Printf("[Storage] Uploaded %s (%s)", objectName, wc.ContentType)
	return c.objectURL(objectName), nil
}

// Delete removes an object previously returned by Upload
func (c *CloudStorageClient) Delete(ctx context.Context, url string) error {
	objectName, err := c.objectFromURL(url)
	if err != nil {
		return err
	}

	if err := c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// SignedURL generates a signed URL for temporary access
func (c *CloudStorageClient) SignedURL(url string, expiration time.Duration) (string, error) {
	objectName, err := c.objectFromURL(url)
	if err != nil {
		return "", err
	}

	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expiration),
	}

	signed, err := c.client.Bucket(c.bucketName).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return signed, nil
}

func (c *CloudStorageClient) objectURL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectName)
}

func (c *CloudStorageClient) objectFromURL(url string) (string, error) {
	prefix := c.objectURL("")
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("url %q is not in bucket %s", url, c.bucketName)
	}
	objectName := strings.TrimPrefix(url, prefix)
	if objectName == "" || filepath.Clean(objectName) != objectName {
		return "", fmt.Errorf("invalid object url %q", url)
	}
	return objectName, nil
}
