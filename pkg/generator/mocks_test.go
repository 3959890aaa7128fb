package generator

import (
	"context"
	"iter"

	"google.golang.org/genai"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
	"github.com/shouni/gemini-promo-kit/pkg/gcpauth"
)

// --- Mocks ---

type mockFetcher struct {
	images []domain.DownloadedImage
	err    error
	called bool
	urls   []string
}

func (m *mockFetcher) FetchAll(ctx context.Context, urls []string) ([]domain.DownloadedImage, error) {
	m.called = true
	m.urls = urls
	return m.images, m.err
}

type mockResolver struct {
	creds  *gcpauth.Credentials
	err    error
	called bool
}

func (m *mockResolver) Resolve(ctx context.Context) (*gcpauth.Credentials, error) {
	m.called = true
	return m.creds, m.err
}

type mockFactory struct {
	model  *mockModel
	err    error
	called bool
}

func (m *mockFactory) NewModel(ctx context.Context, creds *gcpauth.Credentials) (Model, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return m.model, nil
}

// mockModel は用意したレスポンスを順に流すだけのモデルです。
type mockModel struct {
	responses []*genai.GenerateContentResponse
	err       error // responses を流し終えた後に返すエラー
	contents  []*genai.Content
	config    *genai.GenerateContentConfig
	pulled    int
}

func (m *mockModel) GenerateStream(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	m.contents = contents
	m.config = config
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, r := range m.responses {
			m.pulled++
			if !yield(r, nil) {
				return
			}
		}
		if m.err != nil {
			yield(nil, m.err)
		}
	}
}

// --- helpers ---

func textResp(s string) *genai.GenerateContentResponse {
	return partsResp(&genai.Part{Text: s})
}

func imageResp(mime string, data string) *genai.GenerateContentResponse {
	return partsResp(&genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: []byte(data)}})
}

func partsResp(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: string(genai.RoleModel), Parts: parts}}},
	}
}
