package suggest

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/zephyrtronium/formula"
)

// DefaultTimeout bounds HTTP searches whose context has no deadline.
const DefaultTimeout = 5 * time.Second

// HTTPSource searches a JSON endpoint. A search for q is a GET of the URL with
// the query parameter search=q, answered with a JSON array of suggestions.
type HTTPSource struct {
	// URL is the endpoint to search.
	URL string
	// Client sends the requests. If it is nil, a default client is used.
	Client *fasthttp.Client
	// Timeout bounds searches whose context has no deadline. If it is zero,
	// DefaultTimeout is used.
	Timeout time.Duration
}

var defaultClient = &fasthttp.Client{
	MaxIdleConnDuration: 90 * time.Second,
	ReadTimeout:         DefaultTimeout,
	WriteTimeout:        DefaultTimeout,
}

// Search requests suggestions for the query.
func (s *HTTPSource) Search(ctx context.Context, query string) ([]formula.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("suggest: bad source URL: %w", err)
	}
	q := u.Query()
	q.Set("search", query)
	u.RawQuery = q.Encode()

	deadline, ok := ctx.Deadline()
	if !ok {
		t := s.Timeout
		if t <= 0 {
			t = DefaultTimeout
		}
		deadline = time.Now().Add(t)
	}
	client := s.Client
	if client == nil {
		client = defaultClient
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(u.String())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if err := client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("suggest: searching %q: %w", query, err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, &StatusError{Query: query, Code: code}
	}
	var r []formula.Suggestion
	if err := sonic.Unmarshal(resp.Body(), &r); err != nil {
		return nil, fmt.Errorf("suggest: decoding results for %q: %w", query, err)
	}
	return r, nil
}

// StatusError is an error from a search answered with a status other than
// 200 OK.
type StatusError struct {
	Query string
	Code  int
}

func (err *StatusError) Error() string {
	return fmt.Sprintf("suggest: searching %q: HTTP status %d", err.Query, err.Code)
}
