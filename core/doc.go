// Package core contains the business logic of the Bluehand admin backend.
// It does not depend on any web framework or storage engine; every external
// concern is injected through the contracts in core/interfaces.
//
// Sub-packages:
//
// - domain: AWB, shipment, order, tracking and settings value types
// - cache: the response cache over a persistent key/value store
// - courier: the FAN Courier client (AWB generation, labels, tracking)
// - settings: courier credential resolution
// - workers: tracking refresh worker pool and AWB registry
// - errors: typed errors shared by every layer
// - interfaces: Storage, HTTPClient, Logger, Metrics and SettingsStore contracts
//
// # Usage Example
//
//	deps := interfaces.Dependencies{
//	    Storage:    store,      // implements interfaces.Storage
//	    HTTPClient: httpClient, // implements interfaces.HTTPClient
//	    Logger:     logger,     // implements interfaces.Logger
//	}
//
//	responseCache := cache.NewResponseCache(ctx, deps, cache.Options{})
//	svc := courier.NewService(deps, settings.NewCredentialsProvider(nil, logger))
//
//	clients, err := cache.Fetch(ctx, responseCache, cache.KeyClients, 60, loadClients)
//	awb, err := svc.GenerateAWBForOrder(ctx, order)
package core
