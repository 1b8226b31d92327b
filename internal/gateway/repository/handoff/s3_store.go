package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"supportflow/internal/types"
)

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CanUse reports whether enough is configured to talk to S3.
func (c S3Config) CanUse() bool {
	return strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

type S3Archive struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Archive(cfg S3Config) (*S3Archive, error) {
	if !cfg.CanUse() {
		return nil, fmt.Errorf("s3 endpoint, credentials and bucket are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(strings.TrimSpace(cfg.Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(cfg.AccessKey), strings.TrimSpace(cfg.SecretKey), ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Archive{client: client, bucketName: strings.TrimSpace(cfg.Bucket), region: region}, nil
}

func (s *S3Archive) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Archive) Put(ctx context.Context, pkg types.EscalationPackage) (string, error) {
	if strings.TrimSpace(pkg.Ticket.ID) == "" {
		return "", fmt.Errorf("ticket_id is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	body, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode package: %w", err)
	}
	key := objectKey(pkg)
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"ticket-id": pkg.Ticket.ID,
			"priority":  pkg.PriorityLabel,
		},
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Get finds the package for ticketID under any priority prefix.
func (s *S3Archive) Get(ctx context.Context, ticketID string) (types.EscalationPackage, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return types.EscalationPackage{}, err
	}
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+ticketID+".json") {
			continue
		}
		obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
		if err != nil {
			return types.EscalationPackage{}, err
		}
		data, err := io.ReadAll(obj)
		obj.Close()
		if err != nil {
			errResp := minio.ToErrorResponse(err)
			if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
				return types.EscalationPackage{}, ErrNotFound
			}
			return types.EscalationPackage{}, err
		}
		var pkg types.EscalationPackage
		if err := json.Unmarshal(data, &pkg); err != nil {
			return types.EscalationPackage{}, fmt.Errorf("decode package %s: %w", key, err)
		}
		return pkg, nil
	}
	return types.EscalationPackage{}, ErrNotFound
}

func (s *S3Archive) List(ctx context.Context) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	keys := make([]string, 0, 32)
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    "escalations/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key != "" {
			keys = append(keys, obj.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
