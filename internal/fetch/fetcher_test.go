package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/su1ph3r/effodio/pkg/types"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return fn(r) }

type staticResolver struct {
	addrs map[string][]string
	calls int
}

func (s *staticResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	s.calls++
	var out []net.IPAddr
	for _, a := range s.addrs[host] {
		out = append(out, net.IPAddr{IP: net.ParseIP(a)})
	}
	if len(out) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return out, nil
}

// allowLoopback lets a fetcher reach httptest servers while every other
// range stays blocked
func allowLoopback(f *SafeFetcher) *SafeFetcher {
	f.isBlocked = func(a netip.Addr) bool {
		if a.IsLoopback() {
			return false
		}
		return isBlockedAddr(a)
	}
	return f
}

func TestIsBlocked(t *testing.T) {
	tests := []struct {
		ip      string
		blocked bool
	}{
		{"127.0.0.1", true},
		{"10.0.0.5", true},
		{"8.8.8.8", false},
		{"::1", true},
		{"2606:4700::1", false},
		{"169.254.169.254", true},
		{"100.64.1.1", true},
		{"100.128.0.1", false},
		{"172.16.0.1", true},
		{"172.32.0.1", false},
		{"192.0.2.10", true},
		{"198.19.255.255", true},
		{"224.0.0.1", true},
		{"255.255.255.255", true},
		{"::", true},
		{"::ffff:127.0.0.1", true},
		{"::ffff:8.8.8.8", false},
		{"64:ff9b::808:808", true},
		{"2001:db8::1", true},
		{"2001:10::1", true},
		{"fd00::1", true},
		{"fe80::1%eth0", true},
		{"ff02::1", true},
		{"1.1.1.1", false},
		{"not-an-ip", true},
		{"", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.blocked, IsBlocked(tt.ip), "IsBlocked(%q)", tt.ip)
	}
}

func TestValidateAddresses(t *testing.T) {
	public := netip.MustParseAddr("93.184.216.34")
	private := netip.MustParseAddr("10.0.0.5")

	assert.NoError(t, ValidateAddresses([]netip.Addr{public}))

	err := ValidateAddresses([]netip.Addr{public, private})
	assert.ErrorIs(t, err, types.ErrPolicyViolation, "one blocked candidate rejects the lookup")

	assert.ErrorIs(t, ValidateAddresses(nil), types.ErrPolicyViolation)
}

func TestFetch_MetadataAddressRejectedBeforeRequest(t *testing.T) {
	f := New(Options{})
	sent := false
	f.client.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		sent = true
		return nil, errors.New("unexpected request")
	})

	_, err := f.Fetch(context.Background(), "http://169.254.169.254/", 1024)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPolicyViolation)
	var pe *PolicyError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "blocked range")
	assert.False(t, sent, "no request may be sent to a blocked literal address")
}

func TestFetch_RejectedWithoutResolution(t *testing.T) {
	res := &staticResolver{}
	f := New(Options{Resolver: res})

	for _, u := range []string{
		"ftp://example.com/file",
		"file:///etc/passwd",
		"http://localhost:8080/",
		"http://metadata.google.internal/computeMetadata/v1/",
		"http://[::1]/",
		"http://10.1.2.3/admin",
	} {
		_, err := f.Fetch(context.Background(), u, 1024)
		assert.ErrorIs(t, err, types.ErrPolicyViolation, "Fetch(%q)", u)
	}
	assert.Zero(t, res.calls, "policy refusals must not trigger DNS lookups")
}

func TestFetch_MalformedURL(t *testing.T) {
	f := New(Options{})
	_, err := f.Fetch(context.Background(), "http://", 1024)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestFetch_ResolvedToBlockedRange(t *testing.T) {
	res := &staticResolver{addrs: map[string][]string{
		"internal.example": {"10.0.0.5"},
		"mixed.example":    {"93.184.216.34", "192.168.1.1"},
	}}
	f := New(Options{Resolver: res})

	for _, u := range []string{"http://internal.example/", "https://mixed.example/api"} {
		_, err := f.Fetch(context.Background(), u, 1024)
		require.Error(t, err, "Fetch(%q)", u)
		assert.ErrorIs(t, err, types.ErrPolicyViolation, "Fetch(%q)", u)
	}
}

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "effodio-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := allowLoopback(New(Options{UserAgent: "effodio-test"}))
	resp, err := f.Fetch(context.Background(), srv.URL+"/index.html", 1024)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, "<html>ok</html>", string(resp.Body))
}

func TestFetch_HostnameResolvedThroughResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	_, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)

	res := &staticResolver{addrs: map[string][]string{"app.example": {"127.0.0.1"}}}
	f := allowLoopback(New(Options{Resolver: res}))

	resp, err := f.Fetch(context.Background(), "http://app.example:"+port+"/", 1024)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(resp.Body))
	assert.Equal(t, 1, res.calls)
}

func TestFetch_RedirectNotFollowed(t *testing.T) {
	followed := false
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	})
	mux.HandleFunc("/target", func(w http.ResponseWriter, r *http.Request) {
		followed = true
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := allowLoopback(New(Options{}))
	_, err := f.Fetch(context.Background(), srv.URL+"/start", 1024)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPolicyViolation)
	assert.Contains(t, err.Error(), "redirect")
	assert.False(t, followed)
}

func TestFetch_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	f := allowLoopback(New(Options{}))
	_, err := f.Fetch(context.Background(), srv.URL, 1024)
	assert.ErrorIs(t, err, types.ErrPolicyViolation)

	resp, err := f.Fetch(context.Background(), srv.URL, 2048)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 2048, "a body exactly at the cap is accepted")
}

func TestFetch_LoopbackBlockedByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached a loopback server")
	}))
	defer srv.Close()

	_, err := New(Options{}).Fetch(context.Background(), srv.URL, 1024)
	assert.ErrorIs(t, err, types.ErrPolicyViolation)
}

func TestOptionsFromConfig(t *testing.T) {
	settings := types.DefaultConfig().Fetch
	opts := OptionsFromConfig(settings, nil)
	assert.Nil(t, opts.Resolver)

	settings.DNSServer = "9.9.9.9"
	opts = OptionsFromConfig(settings, nil)
	r, ok := opts.Resolver.(*DNSResolver)
	require.True(t, ok)
	assert.Equal(t, "9.9.9.9:53", r.server)
}

func TestRateLimiter(t *testing.T) {
	disabled := NewRateLimiter(0)
	assert.False(t, disabled.Enabled())
	assert.NoError(t, disabled.Wait(context.Background()))

	rl := NewRateLimiter(1)
	assert.True(t, rl.Enabled())
	assert.NoError(t, rl.Wait(context.Background()))

	short, cancelShort := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancelShort()
	assert.Error(t, rl.Wait(short), "burst of one is spent")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, rl.Wait(ctx))
}
