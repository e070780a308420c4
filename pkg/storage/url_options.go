package storage

import "time"

// URLOption configures presigned URL generation.
type URLOption func(*urlOptions)

// urlOptions holds configuration for URL generation.
type urlOptions struct {
	downloadName string        // Filename for Content-Disposition: attachment
	expiry       time.Duration // Signed URL expiry duration
}

// DefaultURLExpiry is the default expiry for presigned URLs.
const DefaultURLExpiry = 15 * time.Minute

// WithExpiry overrides the client's presign expiry for one URL.
// Non-positive values are ignored.
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) {
		if d > 0 {
			o.expiry = d
		}
	}
}

// WithDownload asks the backend to answer with
// Content-Disposition: attachment and the given filename.
func WithDownload(filename string) URLOption {
	return func(o *urlOptions) {
		o.downloadName = filename
	}
}
