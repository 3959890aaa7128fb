package fetcher

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// Object は ObjectReader が開いたオブジェクトです。
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// ObjectReader は gs:// 形式の参照画像を開きます。
type ObjectReader interface {
	Open(ctx context.Context, uri string) (*Object, error)
}

// GCSReader は Cloud Storage 上の参照画像を読み込みます。
type GCSReader struct {
	client *storage.Client
}

// NewGCSReader は Cloud Storage クライアントを初期化します。
func NewGCSReader(ctx context.Context, opts ...option.ClientOption) (*GCSReader, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSReader{client: client}, nil
}

// Open は gs://bucket/object を開き、メタデータと共に返します。
func (r *GCSReader) Open(ctx context.Context, uri string) (*Object, error) {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	rc, err := r.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	return &Object{
		Body:        rc,
		ContentType: rc.Attrs.ContentType,
		Size:        rc.Attrs.Size,
	}, nil
}

// Close は内部の Cloud Storage クライアントを閉じます。
func (r *GCSReader) Close() error {
	return r.client.Close()
}

// ParseGCSURI は gs://bucket/path/to/object をバケット名とオブジェクト名に分解します。
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", fmt.Errorf("not a gs:// URI: %s", uri)
	}
	bucket, object, ok := strings.Cut(strings.TrimPrefix(uri, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("malformed gs:// URI: %s", uri)
	}
	return bucket, object, nil
}

func isGCSURI(uri string) bool {
	return strings.HasPrefix(uri, gcsScheme)
}
