package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// fakeGoogle serves every Google API used by the grader from one handler.
// Routes are keyed by path; a "?media" suffix selects raw Drive downloads.
func fakeGoogle(t *testing.T, routes map[string]any) []option.ClientOption {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.Query().Get("alt") == "media" {
			key += "?media"
		}
		body, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
			return
		}
		if raw, ok := body.(string); ok {
			_, _ = w.Write([]byte(raw))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	return []option.ClientOption{
		option.WithEndpoint(srv.URL + "/"),
		option.WithoutAuthentication(),
	}
}

type fakeTokenProvider struct {
	accounts map[string]bool
	calls    int
}

func (p *fakeTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if !p.accounts[account] {
		return nil, errors.New("no token")
	}
	return &oauth2.Token{AccessToken: "token-" + account}, nil
}

func (p *fakeTokenProvider) HasTokenForAccount(account string) bool {
	return p.accounts[account]
}

func (p *fakeTokenProvider) HTTPClientForAccount(_ context.Context, account string) (*http.Client, error) {
	p.calls++
	if !p.accounts[account] {
		return nil, errors.New("no token")
	}
	return http.DefaultClient, nil
}
