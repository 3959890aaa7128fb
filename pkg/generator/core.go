package generator

import (
	"context"
	"errors"
	"fmt"
	"iter"

	log "github.com/sirupsen/logrus"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

// Pipeline は入力検証から参照画像取得、認証、ストリーミング生成までを一括で行います。
// リクエストをまたいだ状態は持ちません。
type Pipeline struct {
	fetcher     ImageFetcher
	credentials CredentialResolver
	models      ModelFactory
	settings    Settings
}

// NewPipeline は依存関係を注入して Pipeline を初期化します。
func NewPipeline(fetcher ImageFetcher, credentials CredentialResolver, models ModelFactory, settings Settings) (*Pipeline, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if credentials == nil {
		return nil, fmt.Errorf("credentials resolver is required")
	}
	if models == nil {
		return nil, fmt.Errorf("model factory is required")
	}
	return &Pipeline{
		fetcher:     fetcher,
		credentials: credentials,
		models:      models,
		settings:    settings,
	}, nil
}

// Run はリクエストボディを解決して生成を実行します。
func (p *Pipeline) Run(ctx context.Context, body []byte) (*domain.GenerationResult, error) {
	logState(StateValidatingInput)
	in, err := domain.ResolveInput(body)
	if err != nil {
		logState(StateFailed)
		return nil, err
	}
	return p.Generate(ctx, in)
}

// Generate はストリームを最後まで読み、集約結果を返します。
func (p *Pipeline) Generate(ctx context.Context, in domain.ResolvedInput) (*domain.GenerationResult, error) {
	chunks, err := p.Stream(ctx, in)
	if err != nil {
		return nil, err
	}
	result, err := Collect(chunks)
	if err != nil {
		logState(StateFailed)
		return nil, err
	}
	log.WithFields(log.Fields{
		"state":  StateCompleted,
		"chunks": len(result.Chunks),
		"images": len(result.Images),
	}).Info("generation completed")
	return result, nil
}

// Stream は生成直前までの段階を実行し、チャンクのイテレータを返します。
// イテレータを読み進めるまで上流からは受信しません。再開トークンはなく、やり直しはリクエスト全体の再発行になります。
func (p *Pipeline) Stream(ctx context.Context, in domain.ResolvedInput) (iter.Seq2[domain.Chunk, error], error) {
	if in.Prompt == "" {
		logState(StateFailed)
		return nil, &domain.ValidationError{Message: "Prompt is required"}
	}

	logState(StateDownloadingImages)
	images, err := p.fetcher.FetchAll(ctx, in.ImageURLs)
	if err != nil {
		logState(StateFailed)
		var dErr *domain.DownloadError
		if !errors.As(err, &dErr) {
			err = &domain.DownloadError{Err: err}
		}
		return nil, err
	}

	logState(StateResolvingCredentials)
	creds, err := p.credentials.Resolve(ctx)
	if err != nil {
		logState(StateFailed)
		var cErr *domain.CredentialsError
		if !errors.As(err, &cErr) {
			err = &domain.CredentialsError{Message: "Failed to resolve Google Cloud credentials", Err: err}
		}
		return nil, err
	}

	model, err := p.models.NewModel(ctx, creds)
	if err != nil {
		logState(StateFailed)
		return nil, &domain.GenerationError{Err: err}
	}

	logState(StateStreamingGeneration)
	log.WithFields(log.Fields{"kind": in.Kind, "images": len(images)}).Info("requesting generation")
	contents := buildContents(in.Prompt, images)
	return Chunks(model.GenerateStream(ctx, contents, p.settings.GenerateContentConfig())), nil
}

func logState(s State) {
	log.WithField("state", s).Debug("pipeline state")
}
