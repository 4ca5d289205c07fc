// Package storage delivers finished renders to S3-compatible object
// storage so the API can hand back a download URL instead of the binary.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Config selects the bucket and how public URLs are formed. An empty
// Bucket disables the uploader; callers must check Enabled.
type Config struct {
	Bucket string
	Region string
	// Prefix is prepended to every object key, e.g. "outputs".
	Prefix string
	// PublicBaseURL is the host serving the bucket publicly. When empty,
	// the standard virtual-hosted S3 URL is used.
	PublicBaseURL string
	// UsePathStyle forces path-style addressing for S3-compatible
	// providers such as R2 or MinIO.
	UsePathStyle bool
}

// Uploader is the narrow surface the render pipelines need.
type Uploader struct {
	client *s3.Client
	cfg    Config
}

// New builds an Uploader from the default AWS credential chain. Returns
// nil without error when no bucket is configured.
func New(ctx context.Context, cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Uploader{client: client, cfg: cfg}, nil
}

// Enabled reports whether URL delivery is available.
func (u *Uploader) Enabled() bool { return u != nil }

// Upload puts a local file into the bucket under prefix/name and returns
// its public URL.
func (u *Uploader) Upload(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := name
	if u.cfg.Prefix != "" {
		key = path.Join(u.cfg.Prefix, name)
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentTypeFor(name)),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return u.publicURL(key), nil
}

// Delete removes an uploaded object.
func (u *Uploader) Delete(ctx context.Context, name string) error {
	key := name
	if u.cfg.Prefix != "" {
		key = path.Join(u.cfg.Prefix, name)
	}
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	return err
}

// Exists reports whether an object is already in the bucket. 404 and
// NotFound both mean absent; anything else is a real error.
func (u *Uploader) Exists(ctx context.Context, name string) (bool, error) {
	key := name
	if u.cfg.Prefix != "" {
		key = path.Join(u.cfg.Prefix, name)
	}
	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, err
}

func (u *Uploader) publicURL(key string) string {
	if u.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(u.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}
