package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func tokenServer(t *testing.T, expiresIn int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token%d","token_type":"bearer","expires_in":%d}`, n, expiresIn)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGetTokenAndSetAuthHeader(t *testing.T) {
	srv, calls := tokenServer(t, 3600)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: srv.URL})

	token, err := client.GetToken(context.Background())
	if err != nil {
		t.Fatalf("GetToken returned error: %v", err)
	}
	if token != "token1" {
		t.Fatalf("unexpected token %s", token)
	}

	req, _ := http.NewRequest("GET", "http://example.com", nil)
	if err := client.SetAuthHeader(req); err != nil {
		t.Fatalf("SetAuthHeader returned error: %v", err)
	}
	if auth := req.Header.Get("Authorization"); auth != "Bearer token1" {
		t.Fatalf("unexpected Authorization header %q", auth)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected cached token, got %d fetches", got)
	}
}

func TestForceRefresh(t *testing.T) {
	srv, _ := tokenServer(t, 3600)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: srv.URL})

	if _, err := client.GetToken(context.Background()); err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	token, err := client.ForceRefresh(context.Background())
	if err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}
	if token != "token2" {
		t.Fatalf("expected refreshed token, got %s", token)
	}
}

func TestTokenEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "bad", AuthURL: srv.URL})
	if _, err := client.GetToken(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConfEnabled(t *testing.T) {
	if (Conf{}).Enabled() {
		t.Fatalf("empty conf should be disabled")
	}
	if !(Conf{ClientID: "x"}).Enabled() {
		t.Fatalf("conf with client id should be enabled")
	}
}
