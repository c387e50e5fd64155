package ishares

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/milestoneml/equityprep/pkg/httputil"
	"github.com/milestoneml/equityprep/pkg/logger"
)

// Client downloads the index constituent list from the fund provider.
// All universe acquisition goes through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	productURL string
}

// NewClient creates a holdings download client for one fund product page.
func NewClient(httpClient *httputil.Client, log *logger.Logger, productURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		productURL: productURL,
	}
}

// Fetch downloads and parses the current holdings list: product page ->
// export link -> workbook download -> parsed rows.
func (c *Client) Fetch(ctx context.Context) ([]Holding, error) {
	resp, err := c.httpClient.Get(ctx, c.productURL)
	if err != nil {
		return nil, fmt.Errorf("product page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, c.productURL)
	}

	href, err := FindHoldingsLink(resp.Body)
	if err != nil {
		return nil, err
	}

	downloadURL, err := c.resolveLink(href)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "holdings-*.xlsx")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := c.httpClient.Download(ctx, downloadURL, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("holdings download failed: %w", err)
	}

	holdings, err := ParseHoldings(tmp.Name())
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"url":      downloadURL,
		"bytes":    n,
		"holdings": len(holdings),
	}).Info("Downloaded index holdings")

	return holdings, nil
}

// resolveLink resolves a possibly relative export href against the
// product page URL.
func (c *Client) resolveLink(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("bad holdings link %q: %w", href, err)
	}
	if ref.IsAbs() {
		return href, nil
	}

	base, err := url.Parse(c.productURL)
	if err != nil {
		return "", fmt.Errorf("bad product URL %q: %w", c.productURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}
