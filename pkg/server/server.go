package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

// ImageGenerator は画像生成パイプラインです。
type ImageGenerator interface {
	Run(ctx context.Context, body []byte) (*domain.GenerationResult, error)
	Generate(ctx context.Context, in domain.ResolvedInput) (*domain.GenerationResult, error)
}

// PromotionStore はプロモーションの永続化層です。
type PromotionStore interface {
	Migrate(ctx context.Context) error
	SeedSample(ctx context.Context) (*domain.Promotion, error)
	FindByPlndpNo(ctx context.Context, plndpNo, countryCode string) (*domain.Promotion, error)
}

// SQLExecutor は SQL をデータベースの RPC に転送します。
type SQLExecutor interface {
	ExecSQL(ctx context.Context, sql string) (json.RawMessage, error)
}

// Server は HTTP ハンドラー群です。
type Server struct {
	generator ImageGenerator
	store     PromotionStore
	sql       SQLExecutor
	validate  *validator.Validate
	debug     bool
}

// Option は Server の任意設定です。
type Option func(*Server)

// WithPromotionStore はプロモーション系ルートを有効にします。
func WithPromotionStore(store PromotionStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithSQLExecutor は /execute-sql を有効にします。
func WithSQLExecutor(sql SQLExecutor) Option {
	return func(s *Server) {
		s.sql = sql
	}
}

// WithDebug はパニック時のスタック出力を有効にします。
func WithDebug(debug bool) Option {
	return func(s *Server) {
		s.debug = debug
	}
}

// New は Server を作成します。generator は必須です。
func New(generator ImageGenerator, opts ...Option) *Server {
	s := &Server{
		generator: generator,
		validate:  validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router はすべてのルートを登録した http.Handler を返します。
// Next.js 時代のクライアント向けに /api 配下にも同じルートを公開します。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recover(s.debug))

	r.Get("/healthz", s.healthz)
	r.Group(s.routes)
	r.Route("/api", s.routes)
	return r
}

func (s *Server) routes(r chi.Router) {
	r.Post("/generate-image", s.generateImage)
	r.Post("/execute-sql", s.executeSQL)
	r.Post("/setup-db", s.setupDB)
	r.Post("/generate-promotion", s.generatePromotion)
	r.Get("/promotions/{plndpNo}", s.getPromotion)
}
