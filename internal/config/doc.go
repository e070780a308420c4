// Package config loads the gateway configuration and resolves tenants.
//
// Load reads a YAML file whose path comes from ResolvePath. The Registry built
// from it answers three questions per request: which tenant owns a key, which
// bucket that tenant uses, and which session-store endpoint to ask.
//
//	cfg, err := config.Load(config.ResolvePath(flagPath))
//	if err != nil {
//		return err
//	}
//	reg := config.NewRegistry(cfg)
//	bucket, err := reg.ResolveBucket("t1")
//
// Tenants missing from the file can be discovered later and added with
// Registry.Remember; ParseTenantRecord decodes the stored form.
package config
