package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink stores archived report files under a slash-separated key.
type Sink interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// ObjectPutter is the subset of *s3.Client the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type S3Sink struct {
	client ObjectPutter
	bucket string
}

func NewS3Sink(client ObjectPutter, bucket string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket}
}

// DialS3 builds an S3 client for any S3-compatible endpoint.
func DialS3(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}

	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3Sink(client, cfg.Bucket), nil
}

func (s *S3Sink) Put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	return nil
}

// DirSink writes archives to the local filesystem.
type DirSink struct {
	root string
}

func NewDirSink(root string) *DirSink {
	return &DirSink{root: root}
}

func (d *DirSink) Put(_ context.Context, key, _ string, body []byte) error {
	p := filepath.Join(d.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	if err := os.WriteFile(p, body, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

type Archived struct {
	PDFKey  string `json:"pdf_key"`
	JSONKey string `json:"json_key"`
}

type Archiver struct {
	sink   Sink
	prefix string
	format *Formatter
}

func NewArchiver(sink Sink, prefix string, f *Formatter) *Archiver {
	return &Archiver{sink: sink, prefix: strings.Trim(prefix, "/"), format: f}
}

// Archive stores the report as PDF and JSON side by side.
func (a *Archiver) Archive(ctx context.Context, r *ZReport) (*Archived, error) {
	var pdf bytes.Buffer
	if err := RenderPDF(&pdf, r, a.format); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}

	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	base := a.baseKey(r)
	out := &Archived{PDFKey: base + ".pdf", JSONKey: base + ".json"}

	if err := a.sink.Put(ctx, out.PDFKey, "application/pdf", pdf.Bytes()); err != nil {
		return nil, err
	}

	if err := a.sink.Put(ctx, out.JSONKey, "application/json", body); err != nil {
		return nil, err
	}

	slog.Info("z-report archived", "session_id", r.SessionID, "key", base)

	return out, nil
}

// Format: <prefix>/<restaurant>/YYYYMMDD_<session>
func (a *Archiver) baseKey(r *ZReport) string {
	name := fmt.Sprintf("%s_%s", r.From.Format("20060102"), r.SessionID)

	if a.prefix == "" {
		return path.Join(r.RestaurantID.String(), name)
	}

	return path.Join(a.prefix, r.RestaurantID.String(), name)
}
