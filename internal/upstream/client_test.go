package upstream

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/pysugar/codex-accounts/internal/models"
)

func TestNewHTTPClient_DefaultUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := NewHTTPClient(5*time.Second, nil)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if gotUA != UserAgent {
		t.Fatalf("User-Agent = %q, want %q", gotUA, UserAgent)
	}
	if client.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v", client.Timeout)
	}
}

func TestNewHTTPClient_RoutesThroughProxy(t *testing.T) {
	var sawAuth string
	var sawHost string
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Proxy-Authorization")
		sawHost = r.Host
		w.WriteHeader(http.StatusNoContent)
	}))
	defer proxySrv.Close()

	u, _ := url.Parse(proxySrv.URL)
	port, _ := strconv.Atoi(u.Port())

	client := NewHTTPClient(5*time.Second, &models.ProxyEntry{Login: "u", Password: "p", Host: u.Hostname(), Port: uint16(port)})
	resp, err := client.Get("http://upstream.invalid/usage")
	if err != nil {
		t.Fatalf("Get via proxy: %v", err)
	}
	resp.Body.Close()

	if sawHost != "upstream.invalid" {
		t.Fatalf("proxy saw host %q", sawHost)
	}
	// base64("u:p")
	if sawAuth != "Basic dTpw" {
		t.Fatalf("Proxy-Authorization = %q", sawAuth)
	}
}
