package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

var (
	resourceNamePattern = regexp.MustCompile(`^[a-z_]+$`)
	cacheKeyUnsafe      = regexp.MustCompile(`[^-_=.a-zA-Z0-9]`)
)

// ResourcesClient implements aap.ResourcesClient.
type ResourcesClient struct {
	api         *apiContext
	cache       aap.Cache
	ttl         time.Duration
	fingerprint string
}

// NewResourcesClient creates a resources client. A nil cache disables caching.
func NewResourcesClient(api *apiContext, cache aap.Cache, ttl time.Duration, fingerprint string) *ResourcesClient {
	return &ResourcesClient{
		api:         api,
		cache:       cache,
		ttl:         ttl,
		fingerprint: fingerprint,
	}
}

// cacheKey scopes cached lists by host, resource and token so that users
// never see each other's results.
func (c *ResourcesClient) cacheKey(resource string) string {
	host := c.api.baseURL

	parsed, err := url.Parse(c.api.baseURL)
	if err == nil && parsed.Host != "" {
		host = parsed.Host
	}

	key := strings.Join([]string{"aap", host, resource, c.fingerprint}, ".")

	return cacheKeyUnsafe.ReplaceAllString(key, "_")
}

// List implements aap.ResourcesClient.List.
func (c *ResourcesClient) List(ctx context.Context, resource string) ([]aap.ResourceItem, error) {
	if !resourceNamePattern.MatchString(resource) {
		return nil, fmt.Errorf("%w: %q", aap.ErrInvalidResourceName, resource)
	}

	key := c.cacheKey(resource)

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		if err == nil {
			var items []aap.ResourceItem

			err = json.Unmarshal(entry.Data, &items)
			if err == nil {
				return items, nil
			}
		}
	}

	items, err := listAll[aap.ResourceItem](ctx, c.api.httpClient, c.api.endpoint(resource), nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", resource, err)
	}

	if items == nil {
		items = []aap.ResourceItem{}
	}

	if c.cache != nil {
		data, err := json.Marshal(items)
		if err == nil {
			err = c.cache.Set(ctx, key, aap.NewEntry(data, c.ttl))
		}

		if err != nil {
			c.api.logger.Warn("Caching resource list failed", c.api.fields(map[string]interface{}{
				"resource": resource,
				"error":    err.Error(),
			}))
		}
	}

	return items, nil
}
