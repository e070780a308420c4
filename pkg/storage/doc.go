// Package storage brokers access to S3-compatible object storage.
//
// It does not move object bytes itself. A Client mints presigned GET URLs
// and answers a cheap bucket-listing probe; callers fetch the object from
// the returned URL.
//
// # Basic Usage
//
//	c, err := storage.New(storage.Config{
//		Endpoint:  "http://minio:9000",
//		AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
//		SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	link, err := c.PresignGet(ctx, "bucket", "reports/q1.pdf",
//		storage.WithExpiry(5*time.Minute),
//		storage.WithDownload("q1.pdf"),
//	)
//
// # Pooling
//
// Manager satisfies pool.Manager[*Client] and Probe fits pool.ProbeFunc,
// so a storage endpoint can be registered with a health-tracked pool:
//
//	m, err := storage.NewManager(cfg)
//	p, err := pool.New(ctx, m, pool.WithMaxSize(8))
//	reg := pool.NewRegistry(pool.RegistryConfig{Name: "storage"}, storage.Probe)
//	reg.Insert(tenant, pool.NewInstance(m.Endpoint(), p))
//
// # Content types
//
// ContentTypeByKey infers a type from an object key's extension and
// IsGenericType tells whether an upstream Content-Type is worth replacing.
package storage
