package gcpauth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

const (
	DefaultEnvVar     = "GOOGLE_APPLICATION_CREDENTIALS_JSON"
	DefaultDir        = "app"
	DefaultFilePrefix = "global-hackathon"
)

// Credentials はサービスアカウント等の JSON 認証情報です。
type Credentials struct {
	JSON      []byte
	ProjectID string
	Source    string
}

// Provider は認証情報の取得元です。
// 取得元が存在しない場合は (nil, nil) を返し、存在するが壊れている場合はエラーを返します。
type Provider interface {
	Name() string
	Credentials(ctx context.Context) (*Credentials, error)
}

// Chain は Provider を先頭から順に試します。
type Chain []Provider

// DefaultChain は環境変数 → ローカルディレクトリの順で探索する Chain を返します。
func DefaultChain(dir string) Chain {
	return Chain{
		&EnvProvider{Var: DefaultEnvVar},
		&DirProvider{Dir: dir, Prefix: DefaultFilePrefix},
	}
}

// Resolve は最初に認証情報を返した Provider の結果を返します。
// 失敗はすべて *domain.CredentialsError です。
func (c Chain) Resolve(ctx context.Context) (*Credentials, error) {
	for _, p := range c {
		creds, err := p.Credentials(ctx)
		if err != nil {
			return nil, &domain.CredentialsError{
				Message: fmt.Sprintf("Invalid Google Cloud credentials from %s", p.Name()),
				Err:     err,
			}
		}
		if creds != nil {
			log.WithFields(log.Fields{"source": creds.Source, "project_id": creds.ProjectID}).Info("credentials loaded")
			return creds, nil
		}
	}
	return nil, &domain.CredentialsError{Message: "Google Cloud credentials not found"}
}

// EnvProvider は環境変数に入った JSON を読み込みます。
type EnvProvider struct {
	Var string
	// LookupEnv はテスト用の差し替え口です。nil なら os.LookupEnv を使います。
	LookupEnv func(string) (string, bool)
}

func (p *EnvProvider) Name() string { return "env:" + p.Var }

func (p *EnvProvider) Credentials(ctx context.Context) (*Credentials, error) {
	lookup := p.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	raw, ok := lookup(p.Var)
	if !ok || raw == "" {
		return nil, nil
	}
	return parse([]byte(raw), p.Name())
}

// DirProvider はディレクトリ内で Prefix に一致する最初の .json ファイルを読み込みます。
type DirProvider struct {
	Dir    string
	Prefix string
}

func (p *DirProvider) Name() string { return "dir:" + p.Dir }

func (p *DirProvider) Credentials(ctx context.Context) (*Credentials, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), p.Prefix) && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Strings(names)

	path := filepath.Join(p.Dir, names[0])
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}
	return parse(data, "file:"+path)
}

// parse は JSON オブジェクトであることを確認して Credentials を作ります。
func parse(data []byte, source string) (*Credentials, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("credentials are not a JSON object: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("credentials are not a JSON object")
	}
	projectID, _ := obj["project_id"].(string)
	return &Credentials{
		JSON:      data,
		ProjectID: projectID,
		Source:    source,
	}, nil
}
