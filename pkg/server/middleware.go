package server

import (
	"context"
	"net/http"
	"runtime"

	m "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

// RequestID はクライアント指定の X-Request-Id を引き継ぎ、無ければ UUID を採番します。
func RequestID(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), m.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}

// Logger は logrus の標準ロガーにアクセスログを出力します。
func Logger(next http.Handler) http.Handler {
	return m.RequestLogger(
		&m.DefaultLogFormatter{
			Logger:  log.StandardLogger(),
			NoColor: runtime.GOOS == "windows",
		})(next)
}

// Recover はパニックを 500 応答に変換します。debug が有効ならスタックも出力します。
func Recover(debug bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					log.WithField("request_id", m.GetReqID(r.Context())).Errorln(rvr)
					if debug {
						m.PrintPrettyStack(rvr)
					}
					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, errorResponse{Error: "Internal Server Error"})
				}
			}()
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
