package fetcher

import (
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/netarmor/securenet"
	"golang.org/x/net/http2"
)

// ClientOptions は参照画像ダウンロード用クライアントの設定です。
type ClientOptions struct {
	Timeout time.Duration
	// PingInterval が正なら HTTP/2 接続をその間隔でヘルスチェックします。
	PingInterval time.Duration
	// BlockPrivateNetworks が true なら接続のたびに解決済み IP を検証します。
	// リダイレクト先や DNS の再解決にも適用されます。
	BlockPrivateNetworks bool
}

// NewHTTPClient は httpkit.Client を作成します。
// ダウンロードはリトライせず Do だけを使うため、リトライ設定は既定のままです。
func NewHTTPClient(opts ClientOptions) (*httpkit.Client, error) {
	hc, err := newStdClient(opts)
	if err != nil {
		return nil, err
	}
	return httpkit.New(opts.Timeout,
		httpkit.WithHTTPClient(hc),
		httpkit.WithSkipNetworkValidation(!opts.BlockPrivateNetworks),
	), nil
}

func newStdClient(opts ClientOptions) (*http.Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var hc *http.Client
	if opts.BlockPrivateNetworks {
		hc = securenet.NewSafeHTTPClient(timeout)
	} else {
		hc = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   timeout,
		}
	}

	if opts.PingInterval > 0 {
		if t1, ok := hc.Transport.(*http.Transport); ok {
			t2, err := http2.ConfigureTransports(t1)
			if err != nil {
				return nil, err
			}
			t2.ReadIdleTimeout = opts.PingInterval
		}
	}
	return hc, nil
}
