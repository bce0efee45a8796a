// Package aapclient provides the primary entry point for constructing an
// Ansible Automation Platform client that implements the aap.Client interface.
//
// It layers configuration, the HTTP transport and API prefix detection on top
// of the resource interfaces and types defined in the aap package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/aap-client/pkg/aap"
//	  "github.com/fivetwenty-io/aap-client/pkg/aapclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := aapclient.New(ctx, &aap.Config{
//	    BaseURL:         "https://aap.example.com",
//	    Token:           token,
//	    DetectAPIPrefix: true,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  job, err := cli.Jobs().Launch(ctx, &aap.LaunchJobTemplate{
//	    Template: aap.JobTemplate{ID: 21},
//	  })
//	  if err != nil { log.Fatal(err) }
//	  log.Println(job.URL)
//	}
//
// Caching
//
// Autocomplete lookups (Resources().List) can be cached in memory or in a
// NATS JetStream key/value bucket shared by several processes:
//
//	cache, err := aap.NewCacheFromConfig(&aap.CacheConfig{
//	  Type: aap.CacheTypeNATS,
//	  NATS: &aap.NATSKVConfig{URL: "nats://127.0.0.1:4222"},
//	})
//	cli, err := aapclient.NewWithCache(ctx, baseURL, token, cache)
//
// A client is bound to one token. Build one client per user.
package aapclient
