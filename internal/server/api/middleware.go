package api

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/dmitrijs2005/civicdesk/internal/common"
	"github.com/dmitrijs2005/civicdesk/internal/logging"
	"github.com/dmitrijs2005/civicdesk/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

// AccessTokenVerifier is the part of auth.TokenService the middleware needs.
type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// bearerToken extracts the access token from the Authorization header. A
// bare token without the scheme is accepted too.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName))
	if len(h) >= len(common.BearerPrefix) && strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
		return strings.TrimSpace(h[len(common.BearerPrefix):])
	}
	return h
}

// RequireAuth rejects requests without a valid access token and stores the
// token subject in the request context. The subject is trusted as is; no
// user lookup happens here.
func RequireAuth(tokens AccessTokenVerifier, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, common.ErrUnauthenticated.Error())
				return
			}

			claims, err := tokens.VerifyAccessToken(token)
			if err != nil {
				log.Debug(r.Context(), "access token rejected", "uri", r.RequestURI)
				writeMessage(w, http.StatusUnauthorized, common.ErrUnauthenticated.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.Subject)))
		})
	}
}

// echoRequestID copies the id assigned by middleware.RequestID onto the
// response.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(common.RequestIDHeaderName, id)
		}
		next.ServeHTTP(w, r)
	})
}

// rescue turns a handler panic into a 500 and logs the stack.
func rescue(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.Error(r.Context(), "request panic",
						"method", r.Method,
						"uri", r.RequestURI,
						"panic", p,
						"stack", string(debug.Stack()),
					)
					writeMessage(w, http.StatusInternalServerError, msgInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// logRequests logs each request at DEBUG and its response at a level chosen
// by status class.
func logRequests(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reqID := middleware.GetReqID(ctx)

			log.Debug(ctx, "request", "method", r.Method, "uri", r.RequestURI, "request_id", reqID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				"method", r.Method,
				"uri", r.RequestURI,
				"status", status,
				"bytes", ww.BytesWritten(),
				"request_id", reqID,
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Error(ctx, "response", args...)
			case status >= http.StatusBadRequest:
				log.Warn(ctx, "response", args...)
			default:
				log.Info(ctx, "response", args...)
			}
		})
	}
}
