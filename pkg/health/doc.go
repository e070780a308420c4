// Package health serves liveness and readiness probes.
//
// Readiness is computed from the health flags that the pool monitor keeps on
// every pool instance, so a probe request never touches a backend:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(
//		[]health.Source{storagePools},
//		health.WithOptional(sessionPools),
//	))
//
// Plain text is the default body ("OK" or "Service Unavailable"). Send
// Accept: application/json or ?format=json to get per-instance status.
package health
