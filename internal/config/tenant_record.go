package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrymomot/objgate/pkg/storage"
)

// tenantRecord is the JSON document stored under <tenant-lookup-prefix><configKey>.
type tenantRecord struct {
	ConfigKey  string `json:"configKey"`
	AccessKey  string `json:"accessKey"`
	SecretKey  string `json:"secretKey"`
	BucketName string `json:"bucketName"`
	Endpoint   string `json:"endpoint"`
}

// ParseTenantRecord decodes a stored tenant record. The value may itself be a
// JSON string wrapping the object, as written by some clients.
// The result has no session endpoints; it falls back to the default list.
func ParseTenantRecord(configKey, raw string) (TenantConfig, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return TenantConfig{}, fmt.Errorf("%w: %v", ErrMalformedTenant, err)
		}
		raw = strings.TrimSpace(inner)
	}

	var rec tenantRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return TenantConfig{}, fmt.Errorf("%w: %v", ErrMalformedTenant, err)
	}

	switch {
	case rec.ConfigKey != "" && rec.ConfigKey != configKey:
		return TenantConfig{}, fmt.Errorf("%w: record is for %q", ErrMalformedTenant, rec.ConfigKey)
	case rec.Endpoint == "":
		return TenantConfig{}, fmt.Errorf("%w: missing endpoint", ErrMalformedTenant)
	case rec.AccessKey == "" || rec.SecretKey == "":
		return TenantConfig{}, fmt.Errorf("%w: missing credentials", ErrMalformedTenant)
	case rec.BucketName == "":
		return TenantConfig{}, fmt.Errorf("%w: missing bucketName", ErrMalformedTenant)
	}

	return TenantConfig{
		Key:    configKey,
		Bucket: rec.BucketName,
		Storage: []StorageEndpoint{{
			Config: storage.Config{
				Endpoint:  rec.Endpoint,
				AccessKey: rec.AccessKey,
				SecretKey: rec.SecretKey,
			},
			MaxSize: DefaultStorageMaxSize,
		}},
	}, nil
}
