package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
	"github.com/shouni/gemini-promo-kit/pkg/promotion"
	"github.com/shouni/gemini-promo-kit/pkg/supabase"
)

func do(t *testing.T, h http.Handler, method, path, contentType, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var got map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	}
	return rec, got
}

func TestGenerateImage(t *testing.T) {
	result := &domain.GenerationResult{
		Text:   "Here you go",
		Images: []domain.InlineImage{{MimeType: "image/png", Data: []byte("png")}},
		Chunks: []domain.Chunk{
			{Text: "Here you go", FullTextSoFar: "Here you go"},
			{Image: &domain.InlineImage{MimeType: "image/png", Data: []byte("png")}},
		},
	}

	t.Run("正常系: 200 と集約結果を返す", func(t *testing.T) {
		gen := &mockGenerator{result: result}
		h := New(gen).Router()

		rec, got := do(t, h, http.MethodPost, "/generate-image", "application/json", `{"prompt":"banner"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"prompt":"banner"}`, string(gen.gotBody))
		assert.Equal(t, true, got["success"])
		assert.Equal(t, "Here you go", got["text"])
		assert.Len(t, got["images"], 1)
		assert.Len(t, got["chunks"], 2)
		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	})

	t.Run("/api 配下でも同じハンドラーに到達する", func(t *testing.T) {
		gen := &mockGenerator{result: result}
		rec, _ := do(t, New(gen).Router(), http.MethodPost, "/api/generate-image", "application/json", `"hello"`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `"hello"`, string(gen.gotBody))
	})

	t.Run("text/plain はボディ全体をプロンプトとして扱う", func(t *testing.T) {
		gen := &mockGenerator{result: result}
		rec, _ := do(t, New(gen).Router(), http.MethodPost, "/generate-image", "text/plain; charset=utf-8", "a red lipstick")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gen.gotInput)
		assert.Equal(t, domain.InputText, gen.gotInput.Kind)
		assert.Equal(t, "a red lipstick", gen.gotInput.Prompt)
	})

	errorCases := []struct {
		name      string
		err       error
		status    int
		wantError string
		wantURL   string
	}{
		{"ValidationError は 400", &domain.ValidationError{Message: "Prompt is required"}, http.StatusBadRequest, "Prompt is required", ""},
		{
			"DownloadError は 400 で failedUrl を含む",
			&domain.DownloadError{URL: "https://x/a.png", Err: errors.New("HTTP 404")},
			http.StatusBadRequest, "Failed to download one or more images", "https://x/a.png",
		},
		{"CredentialsError は 500", &domain.CredentialsError{Message: "Google Cloud credentials not found"}, http.StatusInternalServerError, "Google Cloud credentials not found", ""},
		{"GenerationError は 500", &domain.GenerationError{Err: errors.New("quota exceeded")}, http.StatusInternalServerError, "Failed to generate content", ""},
		{"未分類のエラーも 500", errors.New("boom"), http.StatusInternalServerError, "Failed to generate content", ""},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			rec, got := do(t, New(&mockGenerator{err: tt.err}).Router(), http.MethodPost, "/generate-image", "application/json", `{}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.wantError, got["error"])
			if tt.wantURL != "" {
				assert.Equal(t, tt.wantURL, got["failedUrl"])
				assert.Contains(t, got["details"], "Failed to download https://x/a.png")
			} else {
				assert.NotContains(t, got, "failedUrl")
			}
		})
	}

	t.Run("GenerationError の details は原因のメッセージ", func(t *testing.T) {
		_, got := do(t, New(&mockGenerator{err: &domain.GenerationError{Err: errors.New("quota exceeded")}}).Router(), http.MethodPost, "/generate-image", "application/json", `{}`)
		assert.Equal(t, "quota exceeded", got["details"])
	})
}

func TestExecuteSQL(t *testing.T) {
	t.Run("正常系: RPC の結果を data に載せる", func(t *testing.T) {
		sql := &mockSQL{data: json.RawMessage(`[{"ok":true}]`)}
		h := New(&mockGenerator{}, WithSQLExecutor(sql)).Router()
		rec, got := do(t, h, http.MethodPost, "/execute-sql", "application/json", `{"sql":"select 1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "select 1", sql.gotSQL)
		assert.Equal(t, true, got["success"])
		assert.Equal(t, []any{map[string]any{"ok": true}}, got["data"])
	})

	t.Run("SQL がなければ 400", func(t *testing.T) {
		h := New(&mockGenerator{}, WithSQLExecutor(&mockSQL{})).Router()
		rec, got := do(t, h, http.MethodPost, "/execute-sql", "application/json", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "SQL query is required", got["error"])
	})

	t.Run("サービスキー未設定は 500 と案内", func(t *testing.T) {
		h := New(&mockGenerator{}, WithSQLExecutor(&mockSQL{err: supabase.ErrMissingServiceKey})).Router()
		rec, got := do(t, h, http.MethodPost, "/execute-sql", "application/json", `{"sql":"select 1"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, supabase.ErrMissingServiceKey.Error(), got["error"])
		assert.NotEmpty(t, got["message"])
	})

	t.Run("RPC エラーは本文を details に載せる", func(t *testing.T) {
		h := New(&mockGenerator{}, WithSQLExecutor(&mockSQL{err: &supabase.RPCError{StatusCode: 400, Body: "syntax error"}})).Router()
		rec, got := do(t, h, http.MethodPost, "/execute-sql", "application/json", `{"sql":"selec"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "SQL execution failed", got["error"])
		assert.Equal(t, "syntax error", got["details"])
	})

	t.Run("未設定なら 503", func(t *testing.T) {
		rec, _ := do(t, New(&mockGenerator{}).Router(), http.MethodPost, "/execute-sql", "application/json", `{"sql":"select 1"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestSetupDB(t *testing.T) {
	sample := promotion.SamplePromotion()

	t.Run("新規作成", func(t *testing.T) {
		h := New(&mockGenerator{}, WithPromotionStore(&mockStore{promotion: sample})).Router()
		rec, got := do(t, h, http.MethodPost, "/setup-db", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, got["success"])
		assert.NotNil(t, got["data"])
	})

	t.Run("既存データがあれば success=false で既存行を返す", func(t *testing.T) {
		h := New(&mockGenerator{}, WithPromotionStore(&mockStore{promotion: sample, seedErr: promotion.ErrAlreadyExists})).Router()
		rec, got := do(t, h, http.MethodPost, "/setup-db", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, got["success"])
		assert.Contains(t, got["message"], "already exists")
	})

	t.Run("マイグレーション失敗は 500", func(t *testing.T) {
		h := New(&mockGenerator{}, WithPromotionStore(&mockStore{migrateErr: errors.New("permission denied")})).Router()
		rec, got := do(t, h, http.MethodPost, "/setup-db", "", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "permission denied", got["error"])
	})
}

func TestGetPromotion(t *testing.T) {
	t.Run("country の既定値は USA", func(t *testing.T) {
		store := &mockStore{promotion: promotion.SamplePromotion()}
		h := New(&mockGenerator{}, WithPromotionStore(store)).Router()
		rec, got := do(t, h, http.MethodGet, "/promotions/1958", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1958", store.gotPlndpNo)
		assert.Equal(t, "USA", store.gotCountry)
		assert.Equal(t, "1958", got["plndp_no"])
	})

	t.Run("見つからなければ 404", func(t *testing.T) {
		store := &mockStore{findErr: promotion.ErrNotFound}
		h := New(&mockGenerator{}, WithPromotionStore(store)).Router()
		rec, _ := do(t, h, http.MethodGet, "/api/promotions/9999?country=JPN", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "JPN", store.gotCountry)
	})
}

func TestGeneratePromotion(t *testing.T) {
	h := New(&mockGenerator{}).Router()

	t.Run("入力が揃っていれば 501", func(t *testing.T) {
		rec, got := do(t, h, http.MethodPost, "/generate-promotion", "application/json", `{"country_code":"USA","category":"beauty"}`)
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
		assert.Equal(t, "pending_implementation", got["status"])
	})

	t.Run("必須項目の欠落は 400", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodPost, "/generate-promotion", "application/json", `{"country_code":"USA"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecoverAndRequestID(t *testing.T) {
	gen := &panicGenerator{}
	h := New(gen).Router()

	req := httptest.NewRequest(http.MethodPost, "/generate-image", strings.NewReader(`{}`))
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestHealthz(t *testing.T) {
	rec, got := do(t, New(&mockGenerator{}).Router(), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", got["status"])
}
