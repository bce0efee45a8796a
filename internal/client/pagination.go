package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/aap-client/internal/http"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// listAll fetches path and every page reachable through the "next" links,
// returning the results in fetch order.
func listAll[T any](ctx context.Context, httpClient *http.Client, path string, query url.Values) ([]T, error) {
	var all []T

	seen := make(map[string]bool)
	next := path

	for next != "" {
		if seen[next] {
			break
		}

		seen[next] = true

		resp, err := httpClient.Get(ctx, next, query)
		if err != nil {
			return nil, err
		}

		var page aap.ListResponse[T]

		err = json.Unmarshal(resp.Body, &page)
		if err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", next, err)
		}

		all = append(all, page.Results...)

		// next links already carry the filter
		next = page.NextPage()
		query = nil
	}

	return all, nil
}
