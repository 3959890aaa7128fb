package promotion

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

var (
	ErrNotFound      = errors.New("promotion not found")
	ErrAlreadyExists = errors.New("promotion already exists")
)

// Store は promotions テーブルへのアクセスを担当します。
type Store struct {
	db *gorm.DB
}

// Open はドライバ名と DSN から Store を作成します。
func Open(driver, dsn string, debug bool) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewStore(db), nil
}

// NewStore は既存の接続から Store を作成します。
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate は promotions テーブルを作成・更新します。
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&domain.Promotion{}); err != nil {
		return fmt.Errorf("failed to migrate promotions: %w", err)
	}
	return nil
}

// FindByPlndpNo は企画展番号と国コードでプロモーションを取得します。
func (s *Store) FindByPlndpNo(ctx context.Context, plndpNo, countryCode string) (*domain.Promotion, error) {
	var p domain.Promotion
	err := s.db.WithContext(ctx).
		Where("plndp_no = ? AND country_code = ?", plndpNo, countryCode).
		Order("id").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create はプロモーションを保存し、採番された ID を p に設定します。
func (s *Store) Create(ctx context.Context, p *domain.Promotion) error {
	return s.db.WithContext(ctx).Create(p).Error
}

// SeedSample はサンプルのプロモーションを1件だけ作成します。
// 既に存在する場合は既存の行と ErrAlreadyExists を返します。
func (s *Store) SeedSample(ctx context.Context) (*domain.Promotion, error) {
	sample := SamplePromotion()
	existing, err := s.FindByPlndpNo(ctx, sample.PlndpNo, sample.CountryCode)
	switch {
	case err == nil:
		return existing, ErrAlreadyExists
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	if err := s.Create(ctx, sample); err != nil {
		return nil, err
	}
	return sample, nil
}
