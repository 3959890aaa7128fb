package generator

import (
	"context"
	"iter"

	"google.golang.org/genai"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
	"github.com/shouni/gemini-promo-kit/pkg/gcpauth"
)

// ImageFetcher は参照画像をすべて取得するか、最初の失敗を返します。
type ImageFetcher interface {
	FetchAll(ctx context.Context, urls []string) ([]domain.DownloadedImage, error)
}

// CredentialResolver はモデル呼び出しに使う認証情報を解決します。
type CredentialResolver interface {
	Resolve(ctx context.Context) (*gcpauth.Credentials, error)
}

// Model はストリーミング生成を行うモデルです。
// 返り値はプル型のイテレータで、呼び出し側が読み進めた分だけ上流から受信します。
type Model interface {
	GenerateStream(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// ModelFactory は認証情報からリクエスト単位の Model を作成します。
type ModelFactory interface {
	NewModel(ctx context.Context, creds *gcpauth.Credentials) (Model, error)
}
