package cli

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/shouni/gemini-promo-kit/pkg/config"
	"github.com/shouni/gemini-promo-kit/pkg/fetcher"
	"github.com/shouni/gemini-promo-kit/pkg/gcpauth"
	"github.com/shouni/gemini-promo-kit/pkg/generator"
)

// buildPipeline は設定から Pipeline を組み立てます。戻り値の cleanup は必ず呼び出してください。
func buildPipeline(ctx context.Context, cfg *config.Config) (*generator.Pipeline, func(), error) {
	cleanup := func() {}
	httpClient, err := fetcher.NewHTTPClient(cfg.HTTPClientOptions())
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to create http client: %w", err)
	}
	chain := gcpauth.DefaultChain(cfg.Vertex.CredentialsDir)

	var objects fetcher.ObjectReader
	if cfg.Download.EnableGCS {
		gcs, err := fetcher.NewGCSReader(ctx, storageOptions(ctx, chain)...)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create storage reader: %w", err)
		}
		objects = gcs
		cleanup = func() {
			if err := gcs.Close(); err != nil {
				log.WithError(err).Warn("failed to close storage client")
			}
		}
	}

	downloader, err := fetcher.NewDownloader(httpClient, objects, cfg.DownloadOptions())
	if err != nil {
		return nil, cleanup, err
	}

	models := &generator.VertexModelFactory{
		Project:  cfg.Vertex.Project,
		Location: cfg.Vertex.Location,
		Model:    cfg.Vertex.Model,
	}

	pipeline, err := generator.NewPipeline(downloader, chain, models, cfg.GeneratorSettings())
	if err != nil {
		return nil, cleanup, err
	}
	return pipeline, cleanup, nil
}

// storageOptions は生成と同じ認証情報で Cloud Storage に接続します。
// 見つからない場合はアプリケーションのデフォルト認証情報に任せます。
func storageOptions(ctx context.Context, chain gcpauth.Chain) []option.ClientOption {
	creds, err := chain.Resolve(ctx)
	if err != nil {
		log.WithError(err).Warn("falling back to default credentials for Cloud Storage")
		return nil
	}
	authCreds, err := creds.AuthCredentials()
	if err != nil {
		log.WithError(err).Warn("falling back to default credentials for Cloud Storage")
		return nil
	}
	return []option.ClientOption{option.WithAuthCredentials(authCreds)}
}
