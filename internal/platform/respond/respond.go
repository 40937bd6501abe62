package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	applog "github.com/janisto/profile-directory/internal/platform/logging"
)

const (
	msgNotFound         = "resource not found"
	msgMethodNotAllowed = "method not allowed"
	msgInternalError    = "internal server error"

	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"
)

// NotFoundHandler renders unmatched routes as problem details.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteProblem(w, r, http.StatusNotFound, msgNotFound)
	}
}

// MethodNotAllowedHandler renders 405 problem details and lists the methods
// the path does accept in the Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		WriteProblem(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}
}

// Recoverer converts panics into 500 problem details. http.ErrAbortHandler
// is re-panicked so net/http can abort the connection.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww, ok := w.(chimiddleware.WrapResponseWriter)
			if !ok {
				ww = chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, isErr := rec.(error); isErr && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LogError(r.Context(), "panic recovered", fmt.Errorf("%v", rec),
					zap.ByteString("stack", debug.Stack()))
				if ww.Status() != 0 {
					return
				}
				WriteProblem(ww, r, http.StatusInternalServerError, msgInternalError)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// WriteProblem writes an RFC 9457 problem document, encoded as CBOR when the
// client prefers it and JSON otherwise.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}

	if prefersCBOR(r.Header.Get("Accept")) {
		body, err := cbor.Marshal(problem)
		if err == nil {
			w.Header().Set("Content-Type", contentTypeProblemCBOR)
			w.WriteHeader(status)
			_, _ = w.Write(body)
			return
		}
		applog.LogError(r.Context(), "failed to encode CBOR problem", err)
	}

	w.Header().Set("Content-Type", contentTypeProblemJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(problem); err != nil {
		applog.LogError(r.Context(), "failed to render problem", err, zap.Int("status", status))
	}
}

// prefersCBOR reports whether the first acceptable media type in accept is
// a CBOR type. Entries with q=0 are skipped; other weights are not ranked.
func prefersCBOR(accept string) bool {
	for part := range strings.SplitSeq(accept, ",") {
		fields := strings.Split(part, ";")
		mediaType := strings.ToLower(strings.TrimSpace(fields[0]))
		if mediaType == "" || rejected(fields[1:]) {
			continue
		}
		return mediaType == "application/cbor" || mediaType == contentTypeProblemCBOR
	}
	return false
}

func rejected(params []string) bool {
	for _, p := range params {
		key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(key, "q") {
			continue
		}
		q, err := strconv.ParseFloat(value, 64)
		return err == nil && q == 0
	}
	return false
}

// allowedMethods inspects chi's routing context to discover allowed methods.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		if r.URL.RawPath != "" {
			routePath = r.URL.RawPath
		} else {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	methods := []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowed := make([]string, 0, len(methods))
	for _, method := range methods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
