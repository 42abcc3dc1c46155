package http

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
	"github.com/nimbus-labs/meetlink-core/internal/core/ports/driving"
)

// The callback lands a real browser, not an API client, so it renders a
// small page that forwards back to the application after a short pause.
var callbackTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="3;url={{.RedirectURL}}">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, sans-serif; text-align: center; padding-top: 4rem; color: #333; }
p { color: #666; }
a { color: #2563eb; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<p>{{.Message}}</p>
<p><a href="{{.RedirectURL}}">Continue</a></p>
</body>
</html>
`))

type callbackPage struct {
	Title       string
	Message     string
	RedirectURL string
}

// handleOAuthCallback godoc
// @Summary      OAuth provider callback
// @Description  Receives the provider redirect, completes the flow, and renders a page that returns the browser to the application
// @Tags         oauth
// @Produce      html
// @Param        code  query string false "Authorization code"
// @Param        state query string true  "Signed state"
// @Param        error query string false "Provider error code"
// @Success      200 {string} string "HTML"
// @Router       /api/v1/oauth/callback [get]
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := s.oauthService.Complete(r.Context(), driving.CompleteRequest{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		s.renderCallbackError(w, err)
		return
	}

	name := result.Provider.DisplayName()
	message := name + " is now connected."
	if result.Email != "" {
		message = name + " is now connected as " + result.Email + "."
	}
	s.renderCallback(w, callbackPage{
		Title:   "Connected",
		Message: message,
		RedirectURL: appendQuery(s.returnURLOrDefault(result.ReturnURL), url.Values{
			"success":  {"true"},
			"provider": {string(result.Provider)},
		}),
	})
}

func (s *Server) renderCallbackError(w http.ResponseWriter, err error) {
	returnURL := ""
	provider := domain.Provider("")
	var ce *driving.CompleteError
	if errors.As(err, &ce) {
		returnURL = ce.ReturnURL
		provider = ce.Provider
	}

	code := "connection_failed"
	message := "The connection could not be completed. Please try again."
	switch {
	case errors.Is(err, domain.ErrInvalidState):
		code = "invalid_state"
		message = "This authorization link is not valid. Please start over."
	case errors.Is(err, domain.ErrExpiredAuthorization):
		code = "expired"
		message = "This authorization link has expired. Please start over."
	case errors.Is(err, domain.ErrTokenExchangeFailed):
		code = "exchange_failed"
		message = "The provider did not grant access. Please try again."
	case errors.Is(err, domain.ErrProviderUnavailable):
		code = "provider_unavailable"
		message = "This provider is not configured. Please contact your administrator."
	}

	s.logger.Warn("oauth callback failed", "error", err)

	params := url.Values{"error": {code}}
	if provider != "" {
		params.Set("provider", string(provider))
	}
	s.renderCallback(w, callbackPage{
		Title:       "Connection failed",
		Message:     message,
		RedirectURL: appendQuery(s.returnURLOrDefault(returnURL), params),
	})
}

func (s *Server) renderCallback(w http.ResponseWriter, page callbackPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := callbackTemplate.Execute(w, page); err != nil {
		s.logger.Error("render callback page", "error", err)
	}
}

func (s *Server) returnURLOrDefault(returnURL string) string {
	if returnURL == "" {
		return s.defaultReturnURL
	}
	return returnURL
}

// appendQuery adds params to a URL, preserving any existing query string.
func appendQuery(rawURL string, params url.Values) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Set(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
