// Package fetch performs outbound HTTP GETs under the network-safety policy:
// http(s) only, no blocked address ranges, no redirects, capped bodies.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/su1ph3r/effodio/pkg/types"
)

// Response is a fully read, size-capped response
type Response struct {
	URL         string
	StatusCode  int
	Header      http.Header
	ContentType string
	Body        []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Options configures a SafeFetcher
type Options struct {
	Timeout   time.Duration
	UserAgent string
	RateLimit float64 // requests per second, 0 = unlimited
	Resolver  Resolver
	Logger    hclog.Logger
}

// OptionsFromConfig maps fetch settings onto Options, picking the miekg/dns
// resolver when a DNS server is configured
func OptionsFromConfig(settings types.FetchSettings, logger hclog.Logger) Options {
	opts := Options{
		Timeout:   settings.Timeout,
		UserAgent: settings.UserAgent,
		RateLimit: settings.RateLimit,
		Logger:    logger,
	}
	if settings.DNSServer != "" {
		opts.Resolver = NewDNSResolver(settings.DNSServer, settings.Timeout)
	}
	return opts
}

// SafeFetcher performs policy-checked GET requests. Safe for concurrent use.
type SafeFetcher struct {
	client    *http.Client
	resolver  Resolver
	limiter   *RateLimiter
	userAgent string
	logger    hclog.Logger

	// isBlocked decides address policy; tests swap it to reach httptest servers
	isBlocked func(netip.Addr) bool
}

// New creates a SafeFetcher
func New(opts Options) *SafeFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Resolver == nil {
		opts.Resolver = SystemResolver()
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	f := &SafeFetcher{
		resolver:  opts.Resolver,
		limiter:   NewRateLimiter(opts.RateLimit),
		userAgent: opts.UserAgent,
		logger:    opts.Logger.Named("fetch"),
		isBlocked: isBlockedAddr,
	}
	if f.limiter.Enabled() {
		f.logger.Debug("pacing fetches", "rps", opts.RateLimit)
	}

	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           f.dialContext(dialer),
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   opts.Timeout,
		ResponseHeaderTimeout: opts.Timeout,
		ForceAttemptHTTP2:     true,
	}
	f.client = &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f
}

// Fetch GETs rawURL and returns at most maxBytes of body. Policy refusals are
// *PolicyError values; a malformed URL is types.ErrInvalidInput.
func (f *SafeFetcher) Fetch(ctx context.Context, rawURL string, maxBytes int64) (*Response, error) {
	u, err := f.checkURL(rawURL)
	if err != nil {
		return nil, err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidInput, rawURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		var pe *PolicyError
		if errors.As(err, &pe) {
			if pe.URL == "" {
				pe.URL = rawURL
			}
			return nil, pe
		}
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return nil, policyError(rawURL, "redirect (%d) to %q not followed", resp.StatusCode, resp.Header.Get("Location"))
	}

	body, err := readCapped(resp.Body, maxBytes)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			return nil, policyError(rawURL, "response exceeds %d bytes", maxBytes)
		}
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	f.logger.Debug("fetched", "url", rawURL, "status", resp.StatusCode, "bytes", len(body))

	return &Response{
		URL:         u.String(),
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// checkURL applies every policy that needs no network access
func (f *SafeFetcher) checkURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidInput, rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, policyError(rawURL, "scheme %q not allowed", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: %s: missing host", types.ErrInvalidInput, rawURL)
	}
	if host == "localhost" || strings.Contains(host, "metadata") {
		return nil, policyError(rawURL, "host %q not allowed", host)
	}

	if addr, err := netip.ParseAddr(host); err == nil && f.isBlocked(addr) {
		return nil, policyError(rawURL, "address %s is in a blocked range", addr)
	}
	return u, nil
}

// dialContext resolves through the injected resolver and refuses the whole
// lookup when any candidate address is blocked
func (f *SafeFetcher) dialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		addrs, err := f.resolve(ctx, host)
		if err != nil {
			return nil, err
		}
		if err := validateWith(addrs, f.isBlocked); err != nil {
			f.logger.Warn("blocked resolution", "host", host, "error", err)
			return nil, err
		}

		var lastErr error
		for _, a := range addrs {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(a.String(), port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		return nil, lastErr
	}
}

func (f *SafeFetcher) resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}

	ips, err := f.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", host, err)
	}
	addrs := make([]netip.Addr, 0, len(ips))
	for _, ip := range ips {
		a, ok := netip.AddrFromSlice(ip.IP)
		if !ok {
			return nil, &PolicyError{Reason: fmt.Sprintf("unparseable address %q for %s", ip.IP, host)}
		}
		addrs = append(addrs, a.Unmap())
	}
	return addrs, nil
}

var errBodyTooLarge = errors.New("body too large")

func readCapped(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > maxBytes {
		return nil, errBodyTooLarge
	}
	return body, nil
}
