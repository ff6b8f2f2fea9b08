// Package mediaserver talks to the managed application's local HTTP API.
package mediaserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sirupsen/logrus"
)

// Client publishes preference updates to the application. The app is a
// black box: one authenticated endpoint, token in the query string, 2xx
// means accepted.
type Client struct {
	baseURL  string
	http     *http.Client
	executor failsafe.Executor[*http.Response]
	log      *logrus.Entry
}

// NewClient creates a client for the app at baseURL.
func NewClient(baseURL string, log *logrus.Entry) *Client {
	retry := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(func(resp *http.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode >= 500
		}).
		WithBackoff(500*time.Millisecond, 5*time.Second).
		WithJitterFactor(0.1).
		WithMaxRetries(2).
		Build()

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		executor: failsafe.With(retry),
		log:      log,
	}
}

// PublishConnections pushes the externally reachable connection URLs to
// the app's preference endpoint. A non-2xx response is a retryable
// failure for the caller: nothing is recorded until the push succeeds.
func (c *Client) PublishConnections(ctx context.Context, token string, urls []string) error {
	q := url.Values{}
	q.Set("customConnections", strings.Join(urls, ","))
	q.Set("token", token)
	endpoint := c.baseURL + "/:/prefs?" + q.Encode()

	resp, err := c.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		resp.Body.Close()
		return resp, nil
	})
	if err != nil {
		return fmt.Errorf("prefs update failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("prefs update rejected: %s", resp.Status)
	}

	c.log.Infof("published connection URLs: %s", strings.Join(urls, ","))
	return nil
}
