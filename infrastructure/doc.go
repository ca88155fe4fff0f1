// Package infrastructure provides concrete implementations of the contracts
// defined in core/interfaces.
//
// It is organized by technical concern:
//
// - cache/memory: byte-quota store over patrickmn/go-cache
// - cache/sqlite: byte-quota store over a SQLite table
// - cache/redis: namespaced store over Redis
// - http/standard: net/http client; GETs retry with backoff, POSTs do not
// - logger/logrus, logger/zap: structured logger adapters
// - metrics/prometheus: counters and histograms on a private registry
// - scheduler: cron runner for the cache sweep and tracking refresh jobs
// - settings/supabase, settings/sqlite: settings table stores
//
// Every cache store reports a full backend with an error satisfying
// errors.IsQuotaExceeded, which the response cache relies on to shed load.
//
// # Examples
//
//	store, err := sqlite.NewStorage(sqlite.Options{Path: "cache.db"})
//
//	client := standard.New(30 * time.Second)
//	resp, err := client.Get(ctx, "https://api.fancourier.ro/reports/awb/tracking?awb=1", nil)
//	if err != nil {
//	    return err
//	}
//	defer resp.Body().Close()
package infrastructure
