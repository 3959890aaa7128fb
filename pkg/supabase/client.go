package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	log "github.com/sirupsen/logrus"
)

// DefaultTimeout は RPC 1回あたりのタイムアウトです。
const DefaultTimeout = 60 * time.Second

// ErrMissingServiceKey はサービスロールキーが設定されていないことを表します。
var ErrMissingServiceKey = errors.New("SUPABASE_SERVICE_ROLE_KEY is not set")

// RPCError は RPC が 2xx 以外を返したことを表します。Body は応答本文そのままです。
type RPCError struct {
	StatusCode int
	Body       string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc failed with HTTP %d: %s", e.StatusCode, e.Body)
}

// Client はデータベースの REST RPC エンドポイントを呼び出します。
type Client struct {
	baseURL    string
	serviceKey string
	httpClient httpkit.ClientInterface
}

// NewClient は Client を作成します。
// httpClient が nil の場合は接続先の検証を行わない httpkit.Client を使います。
// 接続先は運用者が設定する URL なので、ローカルの開発用インスタンスも許可します。
func NewClient(baseURL, serviceKey string, httpClient httpkit.ClientInterface) *Client {
	if httpClient == nil {
		httpClient = httpkit.New(DefaultTimeout, httpkit.WithSkipNetworkValidation(true))
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL != "" && !httpClient.IsSecureServiceURL(baseURL) {
		log.WithField("url", baseURL).Warn("supabase URL is not HTTPS, the service role key will be sent in clear text")
	}
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: httpClient,
	}
}

// ExecSQL は exec_sql RPC に SQL を渡し、応答 JSON をそのまま返します。
func (c *Client) ExecSQL(ctx context.Context, sql string) (json.RawMessage, error) {
	return c.RPC(ctx, "exec_sql", map[string]string{"query": sql})
}

// RPC は /rest/v1/rpc/{fn} を service role 権限で1回だけ呼び出します。
// 副作用のある SQL を再送しないよう、httpkit のリトライは使いません。
func (c *Client) RPC(ctx context.Context, fn string, params any) (json.RawMessage, error) {
	if c.serviceKey == "" {
		return nil, ErrMissingServiceKey
	}
	if c.baseURL == "" {
		return nil, errors.New("supabase URL is not set")
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/rpc/"+fn, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		respBody, _ := httpkit.HandleLimitedResponse(resp, httpkit.MaxResponseBodySize)
		return nil, &RPCError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	respBody, err := httpkit.HandleResponse(resp)
	if err != nil {
		var httpErr *httpkit.NonRetryableHTTPError
		if errors.As(err, &httpErr) {
			return nil, &RPCError{StatusCode: httpErr.StatusCode, Body: string(httpErr.Body)}
		}
		return nil, err
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("rpc returned invalid JSON")
	}
	return respBody, nil
}
