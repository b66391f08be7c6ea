package source

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 reads one object from an S3 (or S3-compatible) bucket. The client is
// built on first Open from the default AWS credential chain.
type S3 struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string // optional, for MinIO/LocalStack

	client *s3.Client
}

func NewS3(bucket, key, region, endpoint string) *S3 {
	return &S3{Bucket: bucket, Key: key, Region: region, Endpoint: endpoint}
}

func (s *S3) Name() string { return "s3://" + s.Bucket + "/" + s.Key }

func (s *S3) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.client == nil {
		var loadOpts []func(*config.LoadOptions) error
		if s.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(s.Region))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, &LoadError{Source: s.Name(), Err: fmt.Errorf("aws config: %w", err)}
		}
		s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if s.Endpoint != "" {
				o.BaseEndpoint = aws.String(s.Endpoint)
				o.UsePathStyle = true
			}
		})
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, &LoadError{Source: s.Name(), Err: err}
	}
	return out.Body, nil
}

// GCS reads one object from a Google Cloud Storage bucket using application
// default credentials.
type GCS struct {
	Bucket string
	Object string
}

func NewGCS(bucket, object string) *GCS {
	return &GCS{Bucket: bucket, Object: object}
}

func (g *GCS) Name() string { return "gs://" + g.Bucket + "/" + g.Object }

func (g *GCS) Open(ctx context.Context) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, &LoadError{Source: g.Name(), Err: fmt.Errorf("gcs client: %w", err)}
	}
	r, err := client.Bucket(g.Bucket).Object(g.Object).NewReader(ctx)
	if err != nil {
		_ = client.Close()
		return nil, &LoadError{Source: g.Name(), Err: err}
	}
	return &gcsReader{Reader: r, client: client}, nil
}

// gcsReader closes the client together with the object reader.
type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}
