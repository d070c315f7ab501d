package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// maxBodyBytes caps a single response body. Bill PDFs and listing pages are
// small; anything larger is a misbehaving source.
const maxBodyBytes = 64 << 20

// HTTPTransport is the default Transport: net/http with a cookie jar so
// multi-step login flows keep their session, following redirects the way
// sources expect. Each exchange runs on its own goroutine and reports through
// Exchange.Deliver; client timeouts surface as transport failures.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewHTTPTransport builds a transport with its own cookie jar. A zero timeout
// means no client-side timeout.
func NewHTTPTransport(timeout time.Duration, userAgent string, logger *slog.Logger) (*HTTPTransport, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPTransport{
		client:    &http.Client{Jar: jar, Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

func (t *HTTPTransport) BeginGet(ctx context.Context, ex *Exchange) {
	go t.do(ctx, ex)
}

func (t *HTTPTransport) BeginPost(ctx context.Context, ex *Exchange) {
	go t.do(ctx, ex)
}

func (t *HTTPTransport) do(ctx context.Context, ex *Exchange) {
	var req *http.Request
	var err error
	if ex.Method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, ex.URL,
			strings.NewReader(ex.Form.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, ex.URL, nil)
	}
	if err != nil {
		ex.Deliver(nil, err)
		return
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	t.logger.Debug("requesting", "method", ex.Method, "url", ex.URL)
	resp, err := t.client.Do(req)
	if err != nil {
		ex.Deliver(nil, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		ex.Deliver(nil, err)
		return
	}
	ex.Deliver(&Result{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil)
}
