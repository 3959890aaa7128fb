package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	m "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"

	"github.com/shouni/gemini-promo-kit/pkg/domain"
	"github.com/shouni/gemini-promo-kit/pkg/promotion"
	"github.com/shouni/gemini-promo-kit/pkg/supabase"
)

// maxRequestBytes はリクエストボディの上限です。参照画像は URL で渡されるため小さくて十分です。
const maxRequestBytes = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	FailedURL string `json:"failedUrl,omitempty"`
	Message   string `json:"message,omitempty"`
	Status    string `json:"status,omitempty"`
}

type generateImageResponse struct {
	Success bool                 `json:"success"`
	Text    string               `json:"text"`
	Images  []domain.InlineImage `json:"images"`
	Chunks  []domain.Chunk       `json:"chunks"`
}

type resultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func requestLogger(r *http.Request) *log.Entry {
	return log.WithField("request_id", m.GetReqID(r.Context()))
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) generateImage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	var result *domain.GenerationResult
	if isPlainText(r) {
		result, err = s.generator.Generate(r.Context(), domain.ResolvedInput{Kind: domain.InputText, Prompt: string(body)})
	} else {
		result, err = s.generator.Run(r.Context(), body)
	}
	if err != nil {
		s.renderGenerationError(w, r, err)
		return
	}

	render.JSON(w, r, generateImageResponse{
		Success: true,
		Text:    result.Text,
		Images:  result.Images,
		Chunks:  result.Chunks,
	})
}

func isPlainText(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "text/plain"
}

func (s *Server) renderGenerationError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr *domain.ValidationError
		dErr *domain.DownloadError
		cErr *domain.CredentialsError
	)
	logger := requestLogger(r).WithError(err)

	switch {
	case errors.As(err, &vErr):
		logger.Warn("invalid generate-image request")
		resp := errorResponse{Error: vErr.Message}
		if vErr.Err != nil {
			resp.Details = vErr.Err.Error()
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp)
	case errors.As(err, &dErr):
		logger.Warn("reference image download failed")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{
			Error:     "Failed to download one or more images",
			Details:   dErr.Error(),
			FailedURL: dErr.URL,
		})
	case errors.As(err, &cErr):
		logger.Error("credentials unavailable")
		details := "Set GOOGLE_APPLICATION_CREDENTIALS_JSON or place a service account key file in the app directory."
		if cErr.Err != nil {
			details = cErr.Err.Error()
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: cErr.Message, Details: details})
	default:
		logger.Error("image generation failed")
		details := err.Error()
		var gErr *domain.GenerationError
		if errors.As(err, &gErr) && gErr.Err != nil {
			details = gErr.Err.Error()
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "Failed to generate content", Details: details})
	}
}

type executeSQLRequest struct {
	SQL string `json:"sql"`
}

func (s *Server) executeSQL(w http.ResponseWriter, r *http.Request) {
	if s.sql == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, errorResponse{Error: "SQL execution is not configured"})
		return
	}

	var req executeSQLRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxRequestBytes), &req); err != nil || req.SQL == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "SQL query is required"})
		return
	}

	data, err := s.sql.ExecSQL(r.Context(), req.SQL)
	if err != nil {
		requestLogger(r).WithError(err).Error("sql execution failed")
		render.Status(r, http.StatusInternalServerError)

		var rpcErr *supabase.RPCError
		switch {
		case errors.Is(err, supabase.ErrMissingServiceKey):
			render.JSON(w, r, errorResponse{
				Error:   err.Error(),
				Message: "Run the SQL in the Supabase SQL editor or set the service role key.",
			})
		case errors.As(err, &rpcErr):
			render.JSON(w, r, errorResponse{Error: "SQL execution failed", Details: rpcErr.Body})
		default:
			render.JSON(w, r, errorResponse{Error: "Failed to execute SQL", Message: err.Error()})
		}
		return
	}

	render.JSON(w, r, resultResponse{Success: true, Data: data})
}

func (s *Server) setupDB(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, resultResponse{Success: false, Message: "Database is not configured"})
		return
	}

	if err := s.store.Migrate(r.Context()); err != nil {
		requestLogger(r).WithError(err).Error("migration failed")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resultResponse{Success: false, Message: "Failed to create tables", Error: err.Error()})
		return
	}

	p, err := s.store.SeedSample(r.Context())
	switch {
	case errors.Is(err, promotion.ErrAlreadyExists):
		render.JSON(w, r, resultResponse{
			Success: false,
			Message: fmt.Sprintf("plndp_no=%s, country_code=%s already exists.", p.PlndpNo, p.CountryCode),
			Data:    p,
		})
	case err != nil:
		requestLogger(r).WithError(err).Error("seeding sample promotion failed")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resultResponse{Success: false, Message: "Failed to insert sample data", Error: err.Error()})
	default:
		requestLogger(r).WithField("plndp_no", p.PlndpNo).Info("sample promotion created")
		render.JSON(w, r, resultResponse{Success: true, Message: "Sample promotion created.", Data: p})
	}
}

func (s *Server) getPromotion(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, errorResponse{Error: "Database is not configured"})
		return
	}

	plndpNo := chi.URLParam(r, "plndpNo")
	country := r.URL.Query().Get("country")
	if country == "" {
		country = promotion.SampleCountryCode
	}

	p, err := s.store.FindByPlndpNo(r.Context(), plndpNo, country)
	switch {
	case errors.Is(err, promotion.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: "Promotion not found"})
	case err != nil:
		requestLogger(r).WithError(err).Error("promotion lookup failed")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "Failed to load promotion", Details: err.Error()})
	default:
		render.JSON(w, r, p)
	}
}

func (s *Server) generatePromotion(w http.ResponseWriter, r *http.Request) {
	var req domain.PromotionRequest
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxRequestBytes), &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "country_code and category are required", Details: err.Error()})
		return
	}

	requestLogger(r).WithFields(log.Fields{"country": req.CountryCode, "category": req.Category}).Info("promotion generation requested")
	render.Status(r, http.StatusNotImplemented)
	render.JSON(w, r, errorResponse{
		Error:   "Promotion generation incomplete",
		Message: "Trend analysis, product mapping and banner generation are not available yet.",
		Status:  "pending_implementation",
	})
}
