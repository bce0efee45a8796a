// Package aapclient provides the main entry point for creating AAP clients
package aapclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/aap-client/internal/client"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// New creates a new AAP client. With DetectAPIPrefix set and no explicit
// APIPrefix, the platform is pinged once to choose the controller API.
func New(ctx context.Context, config *aap.Config) (aap.Client, error) {
	if config == nil {
		return nil, aap.ErrConfigRequired
	}

	cfg := *config
	cfg.BaseURL = normalizeBaseURL(cfg.BaseURL)

	if cfg.BaseURL == "" {
		return nil, aap.ErrBaseURLRequired
	}

	aapClient, err := client.New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	if !cfg.DetectAPIPrefix || cfg.APIPrefix != "" {
		return aapClient, nil
	}

	info, err := aapClient.Platform().Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("detecting API prefix: %w", err)
	}

	if info.APIPrefix == aapClient.APIPrefix() {
		return aapClient, nil
	}

	cfg.APIPrefix = info.APIPrefix

	aapClient, err = client.New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return aapClient, nil
}

// normalizeBaseURL trims trailing slashes and defaults the scheme to https.
func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return ""
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

// NewWithToken creates a new client with a base URL and token.
func NewWithToken(ctx context.Context, baseURL, token string) (aap.Client, error) {
	return New(ctx, &aap.Config{
		BaseURL: baseURL,
		Token:   token,
	})
}

// NewWithCache creates a new client whose autocomplete lookups go through cache.
func NewWithCache(ctx context.Context, baseURL, token string, cache aap.Cache) (aap.Client, error) {
	return New(ctx, &aap.Config{
		BaseURL: baseURL,
		Token:   token,
		Cache:   cache,
	})
}
