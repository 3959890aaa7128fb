package generator

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/shouni/gemini-promo-kit/pkg/gcpauth"
)

// VertexModelFactory は Vertex AI バックエンドの genai クライアントをリクエストごとに作成します。
type VertexModelFactory struct {
	// Project が空の場合は認証情報の project_id、それも無ければ DefaultProject を使います。
	Project    string
	Location   string
	Model      string
	HTTPClient *http.Client
}

// NewModel は認証情報から Vertex AI 用の Model を作成します。
func (f *VertexModelFactory) NewModel(ctx context.Context, creds *gcpauth.Credentials) (Model, error) {
	if creds == nil {
		return nil, fmt.Errorf("credentials are required")
	}
	authCreds, err := creds.AuthCredentials()
	if err != nil {
		return nil, err
	}

	project := resolveProject(f.Project, creds.ProjectID)
	location := f.Location
	if location == "" {
		location = DefaultLocation
	}
	model := f.Model
	if model == "" {
		model = DefaultModel
	}

	log.WithFields(log.Fields{"project": project, "location": location, "model": model}).Info("initializing Vertex AI client")
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:     genai.BackendVertexAI,
		Project:     project,
		Location:    location,
		Credentials: authCreds,
		HTTPClient:  f.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &geminiModel{client: client, model: model}, nil
}

func resolveProject(configured, fromCredentials string) string {
	if configured != "" {
		return configured
	}
	if fromCredentials != "" {
		return fromCredentials
	}
	return DefaultProject
}

type geminiModel struct {
	client *genai.Client
	model  string
}

func (m *geminiModel) GenerateStream(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return m.client.Models.GenerateContentStream(ctx, m.model, contents, config)
}
