package aapclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/fivetwenty-io/aap-client/pkg/aapclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prefixed interface {
	APIPrefix() string
	BaseURL() string
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := aapclient.New(context.Background(), nil)
		require.ErrorIs(t, err, aap.ErrConfigRequired)
	})

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()

		_, err := aapclient.New(context.Background(), &aap.Config{BaseURL: "  ", Token: "token"})
		require.ErrorIs(t, err, aap.ErrBaseURLRequired)
	})

	t.Run("requires token", func(t *testing.T) {
		t.Parallel()

		_, err := aapclient.NewWithToken(context.Background(), "aap.example.com", "")
		require.ErrorIs(t, err, aap.ErrTokenRequired)
	})

	t.Run("normalizes base URL", func(t *testing.T) {
		t.Parallel()

		config := &aap.Config{BaseURL: "aap.example.com/", Token: "token"}

		client, err := aapclient.New(context.Background(), config)
		require.NoError(t, err)

		info, ok := client.(prefixed)
		require.True(t, ok)
		assert.Equal(t, "https://aap.example.com", info.BaseURL())
		assert.Equal(t, "aap.example.com/", config.BaseURL)
	})
}

func TestNew_DetectAPIPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    func(w http.ResponseWriter)
		wantPrefix string
	}{
		{
			name: "gateway",
			handler: func(w http.ResponseWriter) {
				_ = json.NewEncoder(w).Encode(map[string]string{"version": "2.5"})
			},
			wantPrefix: "api/controller/v2",
		},
		{
			name: "legacy controller",
			handler: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantPrefix: "api/v2",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var pings int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/gateway/v1/ping/", r.URL.Path)
				atomic.AddInt32(&pings, 1)
				testCase.handler(w)
			}))
			defer server.Close()

			client, err := aapclient.New(context.Background(), &aap.Config{
				BaseURL:         server.URL,
				Token:           "token",
				DetectAPIPrefix: true,
			})
			require.NoError(t, err)

			info, ok := client.(prefixed)
			require.True(t, ok)
			assert.Equal(t, testCase.wantPrefix, info.APIPrefix())
			assert.Equal(t, int32(1), atomic.LoadInt32(&pings))
		})
	}

	t.Run("explicit prefix skips detection", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected request %s", r.URL.Path)
		}))
		defer server.Close()

		client, err := aapclient.New(context.Background(), &aap.Config{
			BaseURL:         server.URL,
			Token:           "token",
			APIPrefix:       "api/v2",
			DetectAPIPrefix: true,
		})
		require.NoError(t, err)

		info, ok := client.(prefixed)
		require.True(t, ok)
		assert.Equal(t, "api/v2", info.APIPrefix())
	})
}

func TestNewWithCache(t *testing.T) {
	t.Parallel()

	var requests int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"count":   1,
			"next":    nil,
			"results": []map[string]interface{}{{"id": 1, "name": "Default"}},
		})
	}))
	defer server.Close()

	client, err := aapclient.NewWithCache(context.Background(), server.URL, "token", aap.NewMemoryCache(10))
	require.NoError(t, err)

	for range 3 {
		items, err := client.Resources().List(context.Background(), "organizations")
		require.NoError(t, err)
		assert.Equal(t, []aap.ResourceItem{{ID: 1, Name: "Default"}}, items)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}
