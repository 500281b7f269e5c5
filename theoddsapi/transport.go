package theoddsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/XavierBriggs/Iris/pkg/contracts"
)

// httpTransport is the default contracts.Transport over net/http. It performs
// exactly one round trip per Send; retry policy belongs to the caller.
type httpTransport struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

var _ contracts.Transport = (*httpTransport)(nil)

func newHTTPTransport(baseURL string, timeout time.Duration, userAgent string) *httpTransport {
	return &httpTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

func (t *httpTransport) Send(ctx context.Context, method, path string, query []contracts.Param, header http.Header) (*contracts.Response, error) {
	fullURL := t.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + encodeQuery(query)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &contracts.Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
	}, nil
}

// encodeQuery renders params in the order given. Keys are the provider's
// literal names; values are escaped.
func encodeQuery(params []contracts.Param) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
