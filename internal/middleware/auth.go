package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/khata/internal/auth"
)

// FormTokenField is the hidden form field carrying the form token.
const FormTokenField = "form_token"

// FormTokenHeader carries the form token for script-initiated requests.
const FormTokenHeader = "X-Form-Token"

// RequireOperator returns a middleware that requires HTTP basic auth with the
// operator credentials. When the authenticator is disabled requests pass through.
func RequireOperator(authenticator auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !authenticator.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}
			if err := authenticator.Authenticate(r.Context(), username, password); err != nil {
				slog.Warn("Operator authentication failed", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="khata", charset="UTF-8"`)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// RequireFormToken returns a middleware that rejects state-changing requests
// without a valid form token.
func RequireFormToken(tokens *auth.FormTokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			token := r.PostFormValue(FormTokenField)
			if token == "" {
				token = r.Header.Get(FormTokenHeader)
			}
			if err := tokens.Validate(token); err != nil {
				slog.Warn("Form token validation failed", "path", r.URL.Path, "error", err)
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
