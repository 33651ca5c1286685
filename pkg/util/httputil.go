package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout is used by clients created with a non positive timeout.
const DefaultTimeout = 30 * time.Second

// HTTPClient is a thin wrapper of *http.Client returning status code and body
// of the response.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient returns a client whose requests time out after the given
// duration.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{&http.Client{Timeout: timeout}}
}

// NewHTTPRequest function builds http call
// @param method <string>: http method
// @param url <string>: URL http to call
// @return <int>, <[]byte>, error
func (c *HTTPClient) NewHTTPRequest(
	ctx context.Context,
	method, url, bodyString string,
	header map[string]string,
) (int, []byte, error) {
	switch method {
	case http.MethodGet, http.MethodDelete:
		return c.do(ctx, method, url, nil, header)
	case http.MethodPost:
		return c.do(ctx, method, url, strings.NewReader(bodyString), header)
	default:
		return 0, nil, fmt.Errorf("verb not supported %s", method)
	}
}

func (c *HTTPClient) do(
	ctx context.Context,
	method, url string,
	body io.Reader,
	header map[string]string,
) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to parse response body: %s", err)
	}

	return rs.StatusCode, bodyBytes, nil
}
