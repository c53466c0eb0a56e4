// Package fetchkit is the shared HTTP plumbing for the broadcaster adapters:
// one bounded client, browser-like headers and the EUC-KR decode path that
// the legacy KBS ticket pages still require
package fetchkit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// DefaultTimeout bounds a single page fetch
const DefaultTimeout = 20 * time.Second

// userAgent mirrors a desktop browser; several of the sites serve error
// pages to unknown agents
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes caps a response body read. The crawled pages are small;
// anything larger is a misbehaving origin
const maxBodyBytes = 8 << 20

// Client wraps http.Client with the defaults every adapter shares
type Client struct {
	hc *http.Client
}

// New builds a Client with the given per-request timeout.
// A non-positive timeout falls back to DefaultTimeout
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{hc: &http.Client{Timeout: timeout}}
}

// GetBytes fetches url and returns the raw body.
// Extra headers are applied on top of the browser defaults
func (c *Client) GetBytes(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", url, err)
	}
	return body, nil
}

// GetDocument fetches url and parses the UTF-8 body into a goquery document
func (c *Client) GetDocument(ctx context.Context, url string, headers map[string]string) (*goquery.Document, error) {
	body, err := c.GetBytes(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: parse html: %w", url, err)
	}
	return doc, nil
}

// GetDocumentEUCKR fetches url, decodes the body from EUC-KR and parses it
func (c *Client) GetDocumentEUCKR(ctx context.Context, url string, headers map[string]string) (*goquery.Document, error) {
	body, err := c.GetBytes(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	decoded, err := DecodeEUCKR(body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: parse html: %w", url, err)
	}
	return doc, nil
}

// DecodeEUCKR converts an EUC-KR byte stream to UTF-8
func DecodeEUCKR(b []byte) ([]byte, error) {
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), korean.EUCKR.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode euc-kr: %w", err)
	}
	return out, nil
}
