// Package netproxy parses user-supplied upstream proxies and checks that
// they are reachable.
package netproxy

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pysugar/codex-accounts/internal/apperr"
	"github.com/pysugar/codex-accounts/internal/models"
)

// ProbeTimeout bounds the TCP connect in Probe.
const ProbeTimeout = 4 * time.Second

// Parsed is a validated proxy definition.
type Parsed struct {
	Login    string
	Password string
	Host     string
	Port     uint16
}

// Raw returns the canonical login:password@host:port form. IPv6 hosts are
// bracketed.
func (p Parsed) Raw() string {
	return p.Login + ":" + p.Password + "@" + net.JoinHostPort(p.Host, strconv.Itoa(int(p.Port)))
}

// Parse validates "login:password@host:port", optionally prefixed with an
// http:// or https:// scheme. The password may contain ':' and the host may
// contain ':' (IPv6); the split happens at the first ':' of the credentials
// and the last ':' of the address. Brackets around an IPv6 host are dropped.
func Parse(raw string) (Parsed, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "http://")
	text = strings.TrimPrefix(text, "https://")

	credentials, hostPart, ok := strings.Cut(text, "@")
	if !ok {
		return Parsed{}, apperr.Invalid("proxy", "Proxy must be in login:pass@ip:port format")
	}
	login, password, ok := strings.Cut(credentials, ":")
	if !ok {
		return Parsed{}, apperr.Invalid("proxy", "Proxy must include login and password")
	}
	idx := strings.LastIndex(hostPart, ":")
	if idx < 0 {
		return Parsed{}, apperr.Invalid("proxy", "Proxy must include ip and port")
	}
	host, portText := hostPart[:idx], hostPart[idx+1:]

	port, err := strconv.ParseUint(strings.TrimSpace(portText), 10, 16)
	if err != nil {
		return Parsed{}, apperr.Invalid("port", "Proxy port must be a valid number")
	}

	p := Parsed{
		Login:    strings.TrimSpace(login),
		Password: strings.TrimSpace(password),
		Host:     strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(host), "["), "]"),
		Port:     uint16(port),
	}
	if p.Login == "" || p.Password == "" || p.Host == "" {
		return Parsed{}, apperr.Invalid("proxy", "Proxy fields cannot be empty")
	}
	return p, nil
}

// URL builds the http:// proxy URL with userinfo for an entry.
func URL(p *models.ProxyEntry) *url.URL {
	return &url.URL{
		Scheme: "http",
		User:   url.UserPassword(p.Login, p.Password),
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(int(p.Port))),
	}
}

// Probe measures the TCP connect time to the proxy. It does not speak HTTP.
func Probe(ctx context.Context, host string, port uint16) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return 0, fmt.Errorf("DNS resolution failed: %w", err)
	}
	if len(ips) == 0 {
		return 0, fmt.Errorf("DNS resolution returned no address")
	}
	addr := net.JoinHostPort(ips[0].IP.String(), strconv.Itoa(int(port)))

	var d net.Dialer
	start := time.Now()
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("TCP connection failed: %w", err)
	}
	elapsed := time.Since(start)
	_ = conn.Close()
	return elapsed, nil
}
