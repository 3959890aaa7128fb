package server

import (
	"context"
	"encoding/json"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
)

type mockGenerator struct {
	result   *domain.GenerationResult
	err      error
	gotBody  []byte
	gotInput *domain.ResolvedInput
}

func (m *mockGenerator) Run(ctx context.Context, body []byte) (*domain.GenerationResult, error) {
	m.gotBody = body
	return m.result, m.err
}

func (m *mockGenerator) Generate(ctx context.Context, in domain.ResolvedInput) (*domain.GenerationResult, error) {
	m.gotInput = &in
	return m.result, m.err
}

type mockStore struct {
	promotion  *domain.Promotion
	migrateErr error
	seedErr    error
	findErr    error
	gotPlndpNo string
	gotCountry string
}

func (m *mockStore) Migrate(ctx context.Context) error { return m.migrateErr }

func (m *mockStore) SeedSample(ctx context.Context) (*domain.Promotion, error) {
	return m.promotion, m.seedErr
}

func (m *mockStore) FindByPlndpNo(ctx context.Context, plndpNo, countryCode string) (*domain.Promotion, error) {
	m.gotPlndpNo, m.gotCountry = plndpNo, countryCode
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.promotion, nil
}

type mockSQL struct {
	data   json.RawMessage
	err    error
	gotSQL string
}

func (m *mockSQL) ExecSQL(ctx context.Context, sql string) (json.RawMessage, error) {
	m.gotSQL = sql
	return m.data, m.err
}

type panicGenerator struct{ mockGenerator }

func (p *panicGenerator) Run(ctx context.Context, body []byte) (*domain.GenerationResult, error) {
	panic("unexpected")
}
