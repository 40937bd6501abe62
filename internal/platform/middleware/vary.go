package middleware

import "net/http"

// Vary returns middleware that adds Accept to the Vary header on all
// responses, since content negotiation picks JSON or CBOR. The CORS
// middleware adds Origin on its own.
func Vary() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept")
			next.ServeHTTP(w, r)
		})
	}
}
