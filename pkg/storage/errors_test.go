package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrInvalidConfig,
		ErrEmptyBucket,
		ErrEmptyKey,
		ErrNotFound,
		ErrAccessDenied,
		ErrPresignFailed,
		ErrProbeFailed,
	}

	seen := make(map[string]bool)
	for _, err := range sentinels {
		msg := err.Error()
		require.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

// mockAPIError implements smithy.APIError for testing.
type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }
func (e *mockAPIError) Error() string                 { return fmt.Sprintf("%s: %s", e.code, e.message) }

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		fallback error
		want     error
	}{
		{"NoSuchKey code", &mockAPIError{code: "NoSuchKey"}, ErrProbeFailed, ErrNotFound},
		{"NoSuchBucket code", &mockAPIError{code: "NoSuchBucket"}, ErrProbeFailed, ErrNotFound},
		{"NotFound code", &mockAPIError{code: "NotFound"}, ErrProbeFailed, ErrNotFound},
		{"AccessDenied code", &mockAPIError{code: "AccessDenied"}, ErrProbeFailed, ErrAccessDenied},
		{"Forbidden code", &mockAPIError{code: "Forbidden"}, ErrProbeFailed, ErrAccessDenied},
		{"bad access key", &mockAPIError{code: "InvalidAccessKeyId"}, ErrProbeFailed, ErrAccessDenied},
		{"bad signature", &mockAPIError{code: "SignatureDoesNotMatch"}, ErrProbeFailed, ErrAccessDenied},
		{"NoSuchKey typed error", &types.NoSuchKey{}, ErrProbeFailed, ErrNotFound},
		{"NoSuchBucket typed error", &types.NoSuchBucket{}, ErrProbeFailed, ErrNotFound},
		{"fallback error", errors.New("dial tcp: refused"), ErrProbeFailed, ErrProbeFailed},
		{"unknown API error code", &mockAPIError{code: "SlowDown"}, ErrPresignFailed, ErrPresignFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, wrapS3Error(tt.err, tt.fallback), tt.want)
		})
	}
}
