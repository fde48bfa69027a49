package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"github.com/lysyi3m/news-browser/app/digest"
)

// FetchError is returned for every failed fetch. StatusCode is zero when
// no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// DefaultMaxBodySize applies when a Fetcher is built without a limit.
const DefaultMaxBodySize int64 = 10 << 20

var (
	ErrBodyTooLarge   = errors.New("response body too large")
	ErrBlockedAddress = errors.New("address is not publicly routable")
)

// Fetcher issues the GET requests of the browser: feed documents, the
// archive listing, RSS sources and link previews.
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration, maxBodySize int64) *Fetcher {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &Fetcher{
		httpClient:  httpClient,
		userAgent:   userAgent,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// NewPublicClient returns an HTTP client that refuses to connect to
// loopback, private, link-local and other non-public addresses. The check
// runs on the resolved address of every connection, redirects included.
func NewPublicClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   rejectNonPublic,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{Transport: transport}
}

func rejectNonPublic(network, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil || !isPublicAddr(addrPort.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	return nil
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsGlobalUnicast() && !addr.IsPrivate()
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	started := time.Now()
	data, err := f.fetch(ctx, url)
	fetchDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		fetchRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	fetchRequests.WithLabelValues("ok").Inc()
	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Message: "HTTP request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}
	if int64(len(data)) > f.maxBodySize {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Message: fmt.Sprintf("response body exceeds %d bytes", f.maxBodySize), Cause: ErrBodyTooLarge}
	}

	return data, nil
}

// FetchJSON decodes the JSON body at url into v.
func (f *Fetcher) FetchJSON(ctx context.Context, url string, v any) error {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return nil
}

// FetchDocument fetches a feed document as published, without normalizing it.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) (*digest.Document, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := digest.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return doc, nil
}
