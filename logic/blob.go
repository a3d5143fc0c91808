package logic

import (
	"FormRecognitionConsole/models"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ContainerLister enumerates the objects of a remote container as fetchable URLs.
type ContainerLister interface {
	ListObjects(ctx context.Context) ([]RemoteObject, error)
}

type RemoteObject struct {
	Name string
	URL  string
}

// NewContainerLister picks the backend from the container URL:
// s3://bucket/prefix, an Azure blob container URL, or a plain HTML index page.
func NewContainerLister(ctx context.Context, containerURL string) (ContainerLister, error) {
	parsed, err := url.Parse(strings.TrimSpace(containerURL))
	if err != nil {
		return nil, fmt.Errorf("invalid container url: %w", err)
	}

	switch {
	case parsed.Scheme == "s3":
		return NewS3Lister(ctx, parsed.Host, strings.TrimPrefix(parsed.Path, "/"), S3ConfigFromEnv())
	case (parsed.Scheme == "https" || parsed.Scheme == "http") && strings.HasSuffix(parsed.Hostname(), ".blob.core.windows.net"):
		return NewAzureLister(parsed.String())
	case parsed.Scheme == "https" || parsed.Scheme == "http":
		return NewIndexLister(parsed.String()), nil
	}

	return nil, fmt.Errorf("unsupported container url scheme %q", parsed.Scheme)
}

// RemoteImageRefs turns listed objects into refs whose reports land in outputFolder.
func RemoteImageRefs(objects []RemoteObject, outputFolder string) []models.ImageRef {
	refs := make([]models.ImageRef, 0, len(objects))
	for _, object := range objects {
		refs = append(refs, models.ImageRef{
			Name:       object.Name,
			URL:        object.URL,
			OutputPath: filepath.Join(outputFolder, ReportName(object.Name)),
		})
	}
	return refs
}

type AzureLister struct {
	client *container.Client
}

// NewAzureLister expects a container URL carrying its SAS token, or a public container.
func NewAzureLister(containerURL string) (*AzureLister, error) {
	client, err := container.NewClientWithNoCredential(containerURL, nil)
	if err != nil {
		return nil, err
	}
	return &AzureLister{client: client}, nil
}

func (a *AzureLister) ListObjects(ctx context.Context) ([]RemoteObject, error) {
	var objects []RemoteObject

	pager := a.client.NewListBlobsFlatPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs: %w", err)
		}

		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			objects = append(objects, RemoteObject{
				Name: *item.Name,
				URL:  a.client.NewBlockBlobClient(*item.Name).URL(),
			})
		}
	}

	return objects, nil
}

type S3Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	PresignExpiry time.Duration
}

func S3ConfigFromEnv() S3Config {
	cfg := S3Config{
		Endpoint:      os.Getenv("S3_ENDPOINT"),
		Region:        os.Getenv("S3_REGION"),
		AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("S3_SECRET_KEY"),
		PresignExpiry: 15 * time.Minute,
	}

	if minutes, err := strconv.Atoi(os.Getenv("S3_PRESIGN_MINUTES")); err == nil && minutes > 0 {
		cfg.PresignExpiry = time.Duration(minutes) * time.Minute
	}

	return cfg
}

// S3Lister lists a bucket prefix and hands out presigned GET urls the service can fetch.
type S3Lister struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	expiry  time.Duration
}

func NewS3Lister(ctx context.Context, bucket, prefix string, cfg S3Config) (*S3Lister, error) {
	if bucket == "" {
		return nil, errors.New("s3 url has no bucket")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Lister{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		prefix:  prefix,
		expiry:  cfg.PresignExpiry,
	}, nil
}

func (s *S3Lister) ListObjects(ctx context.Context) ([]RemoteObject, error) {
	var objects []RemoteObject

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}

		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}

			signed, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			}, s3.WithPresignExpires(s.expiry))
			if err != nil {
				return nil, fmt.Errorf("presign %s: %w", key, err)
			}

			objects = append(objects, RemoteObject{Name: key, URL: signed.URL})
		}
	}

	return objects, nil
}
