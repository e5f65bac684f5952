// Package fetch retrieves raw markup from the listings site using gocolly.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"
)

// Config controls collector behavior.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client implements vacancy.Source using the Colly collector. One GET per
// call, no crawling callbacks; paging decisions belong to the orchestrator.
type Client struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Client.
func New(cfg Config) *Client {
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)

	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Client{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// ListPage fetches one listings page for a category code. The experience
// filter code is optional; an empty code omits the parameter.
func (c *Client) ListPage(ctx context.Context, categoryCode string, page int, expCode string) ([]byte, error) {
	params := url.Values{}
	params.Set("category", categoryCode)
	params.Set("page", strconv.Itoa(page))
	if expCode != "" {
		params.Set("exp", expCode)
	}
	return c.get(ctx, fmt.Sprintf("%s/vacancies/?%s", c.cfg.BaseURL, params.Encode()))
}

// Page fetches an absolute URL, typically a vacancy detail page.
func (c *Client) Page(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	var (
		body     []byte
		fetchErr error
	)

	collector := c.baseCollector.Clone()
	if c.cfg.UserAgent != "" {
		collector.UserAgent = c.cfg.UserAgent
	}
	timeout := c.cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(c.transport)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "uk-UA,uk;q=0.9,en-US;q=0.8,en;q=0.7")
	})
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
		}
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", rawURL, fetchErr)
		}
		return body, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
