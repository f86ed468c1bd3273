// Package config loads the application configuration from environment
// variables with github.com/caarlos0/env/v11.
//
// Each section reuses the env-tagged Config of the package it configures:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	store, err := cache.New(ctx, cfg.Cache)
//
// Notable variables: APP_DEBUG, URL_MODE (path_info or query_string),
// TIME_ZONE, ROUTES_FILE, CACHE_ADAPTER (memory, redis or memcached),
// DB_TYPE (postgres or sqlite) and LOG_LEVEL.
package config
