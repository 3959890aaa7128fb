package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/netarmor/securenet"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
	"github.com/shouni/gemini-promo-kit/pkg/imgutil"
)

const (
	DefaultTimeout            = 30 * time.Second
	MaxImageBytes       int64 = 10 * 1024 * 1024
	DefaultCompressQual       = imgutil.DefaultQuality
)

var (
	ErrBadStatus   = errors.New("failed to download image")
	ErrNotImage    = errors.New("URL does not point to an image")
	ErrTooLarge    = errors.New("image size exceeds 10MB limit")
	ErrUnsafeURL   = errors.New("URL is not allowed")
	ErrNoGCSReader = errors.New("gs:// URLs are not supported without a storage reader")
)

// Options はダウンロードの制約です。ゼロ値のフィールドは既定値に置き換えられます。
type Options struct {
	Timeout              time.Duration
	MaxBytes             int64
	Concurrency          int
	BlockPrivateNetworks bool
	Compress             bool
	CompressionQuality   int
	// MaxDimension は再エンコード時の長辺の上限です。Compress が無効なら使われません。
	MaxDimension int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = MaxImageBytes
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.CompressionQuality <= 0 {
		o.CompressionQuality = DefaultCompressQual
	}
	return o
}

// Downloader は参照画像をサイズと時間の上限付きで取得します。
// BlockPrivateNetworks は送信前の URL 検証だけを行います。接続時の検証は
// NewHTTPClient で BlockPrivateNetworks を有効にしたクライアントが担います。
type Downloader struct {
	httpClient httpkit.Doer
	objects    ObjectReader
	opts       Options
}

// NewDownloader は依存関係を注入して Downloader を初期化します。objects は nil を許容します。
func NewDownloader(httpClient httpkit.Doer, objects ObjectReader, opts Options) (*Downloader, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &Downloader{
		httpClient: httpClient,
		objects:    objects,
		opts:       opts.withDefaults(),
	}, nil
}

// FetchAll はすべての URL を入力順に取得します。
// 1件でも失敗した場合は結果を返さず、入力順で最初に失敗した URL の DownloadError を返します。
func (d *Downloader) FetchAll(ctx context.Context, urls []string) ([]domain.DownloadedImage, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	log.WithField("count", len(urls)).Info("downloading reference images")

	if d.opts.Concurrency == 1 {
		images := make([]domain.DownloadedImage, 0, len(urls))
		for _, u := range urls {
			img, err := d.Fetch(ctx, u)
			if err != nil {
				return nil, err
			}
			images = append(images, img)
		}
		return images, nil
	}

	images := make([]domain.DownloadedImage, len(urls))
	errs := make([]error, len(urls))
	var g errgroup.Group
	g.SetLimit(d.opts.Concurrency)
	for i, u := range urls {
		g.Go(func() error {
			images[i], errs[i] = d.Fetch(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return images, nil
}

// Fetch は1件の参照画像を取得します。失敗は常に *domain.DownloadError です。
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (domain.DownloadedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	var (
		img domain.DownloadedImage
		err error
	)
	if isGCSURI(rawURL) {
		img, err = d.fetchObject(ctx, rawURL)
	} else {
		img, err = d.fetchHTTP(ctx, rawURL)
	}
	if err != nil {
		log.WithFields(log.Fields{"url": rawURL, "error": err}).Warn("reference image download failed")
		return domain.DownloadedImage{}, &domain.DownloadError{URL: rawURL, Err: err}
	}

	if d.opts.Compress {
		img.Data, img.MimeType = imgutil.Recompress(img.Data, img.MimeType, imgutil.Options{
			Quality:      d.opts.CompressionQuality,
			MaxDimension: d.opts.MaxDimension,
		})
	}
	log.WithFields(log.Fields{"url": rawURL, "mime_type": img.MimeType, "bytes": len(img.Data)}).Debug("reference image downloaded")
	return img, nil
}

func (d *Downloader) fetchHTTP(ctx context.Context, rawURL string) (domain.DownloadedImage, error) {
	if d.opts.BlockPrivateNetworks {
		if safe, err := securenet.IsSafeURL(rawURL); err != nil || !safe {
			return domain.DownloadedImage{}, fmt.Errorf("%w: %v", ErrUnsafeURL, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.DownloadedImage{}, err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return domain.DownloadedImage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.DownloadedImage{}, fmt.Errorf("%w: HTTP %d", ErrBadStatus, resp.StatusCode)
	}
	return d.readImage(rawURL, resp.Body, resp.Header.Get("Content-Type"), resp.ContentLength)
}

func (d *Downloader) fetchObject(ctx context.Context, uri string) (domain.DownloadedImage, error) {
	if d.objects == nil {
		return domain.DownloadedImage{}, ErrNoGCSReader
	}
	obj, err := d.objects.Open(ctx, uri)
	if err != nil {
		return domain.DownloadedImage{}, err
	}
	defer obj.Body.Close()
	return d.readImage(uri, obj.Body, obj.ContentType, obj.Size)
}

// readImage は Content-Type とサイズ (宣言値と実測値の両方) を検証して読み込みます。
// declaredSize が負の場合は宣言なしとして扱います。
func (d *Downloader) readImage(rawURL string, body io.Reader, contentType string, declaredSize int64) (domain.DownloadedImage, error) {
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		return domain.DownloadedImage{}, fmt.Errorf("%w. Content-Type: %s", ErrNotImage, contentType)
	}
	if declaredSize > d.opts.MaxBytes {
		return domain.DownloadedImage{}, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(body, d.opts.MaxBytes+1))
	if err != nil {
		return domain.DownloadedImage{}, err
	}
	if int64(len(data)) > d.opts.MaxBytes {
		return domain.DownloadedImage{}, ErrTooLarge
	}

	return domain.DownloadedImage{
		URL:      rawURL,
		MimeType: contentType,
		Data:     data,
	}, nil
}
