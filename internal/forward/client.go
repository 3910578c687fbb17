package forward

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

const DefaultTimeout = 30 * time.Second

var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("timeout calling service")
	ErrTransport          = errors.New("unexpected transport error")
	ErrUnexpectedStatus   = errors.New("unexpected response status")
)

// Response is what the downstream service answered.
type Response struct {
	StatusCode int
	Body       string
}

// Client POSTs envelopes to downstream services. It is safe for concurrent use.
type Client struct {
	http *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client, e.g. with an httptest one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client with the given timeout. When verifyTLS is false the
// downstream certificate is not checked; only use that outside production.
func New(timeout time.Duration, verifyTLS bool, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !verifyTLS} //nolint:gosec
	c := &Client{
		http: &http.Client{Timeout: timeout, Transport: transport},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Post sends env to url. A non-200 answer returns both the response and an
// error wrapping ErrUnexpectedStatus. Transport failures wrap
// ErrServiceUnavailable, ErrTimeout or ErrTransport.
func (c *Client) Post(ctx context.Context, url string, env Envelope) (Response, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return Response{}, errors.Wrap(err, "encode envelope")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, errors.Wrapf(ErrTransport, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return Response{}, classify(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{StatusCode: res.StatusCode}, classify(err)
	}
	out := Response{StatusCode: res.StatusCode, Body: string(body)}
	if res.StatusCode != http.StatusOK {
		return out, errors.Wrapf(ErrUnexpectedStatus, "status %d", res.StatusCode)
	}
	return out, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Wrapf(ErrTimeout, "%v", err)
	}
	if unreachable(err) {
		return errors.Wrapf(ErrServiceUnavailable, "%v", err)
	}
	return errors.Wrapf(ErrTransport, "%v", err)
}

func unreachable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
