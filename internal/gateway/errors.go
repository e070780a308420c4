package gateway

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/objgate/internal"
	"github.com/dmitrymomot/objgate/middlewares"
	"github.com/dmitrymomot/objgate/pkg/auth"
	"github.com/dmitrymomot/objgate/pkg/metrics"
)

var (
	ErrPrefixMismatch   = errors.New("gateway: path does not start with the match prefix")
	ErrMissingObjectKey = errors.New("gateway: missing object key")

	// ErrConfig covers unknown tenants, tenants without a bucket and malformed stored tenants.
	ErrConfig = errors.New("gateway: configuration error")

	ErrBackendUnavailable = errors.New("gateway: no healthy storage backend")
	ErrLinkGeneration     = errors.New("gateway: link generation failed")
	ErrUpstream           = errors.New("gateway: upstream request failed")
)

// PrefixMismatchMessage is the plain-text body of a 400 for a path outside the match prefix.
const PrefixMismatchMessage = "URI does not start with the expected prefix"

type errorReply struct {
	outcome string
	message string
	code    int
	plain   bool
}

func classify(err error) errorReply {
	switch {
	case errors.Is(err, ErrPrefixMismatch):
		return errorReply{code: http.StatusBadRequest, message: PrefixMismatchMessage, plain: true, outcome: metrics.OutcomeBadPath}
	case errors.Is(err, ErrMissingObjectKey):
		return errorReply{code: http.StatusBadRequest, message: "Missing object key", outcome: metrics.OutcomeBadPath}
	case errors.Is(err, auth.ErrUnauthorized):
		return errorReply{code: http.StatusUnauthorized, message: "Unauthorized", outcome: metrics.OutcomeUnauthorized}
	case errors.Is(err, ErrConfig):
		return errorReply{code: http.StatusInternalServerError, message: "Config error", outcome: metrics.OutcomeConfigError}
	case errors.Is(err, ErrBackendUnavailable):
		return errorReply{code: http.StatusServiceUnavailable, message: "Backend unavailable", outcome: metrics.OutcomeUnavailable}
	case errors.Is(err, ErrLinkGeneration):
		return errorReply{code: http.StatusBadGateway, message: "Link generation failed", outcome: metrics.OutcomeLinkFailed}
	case errors.Is(err, ErrUpstream):
		return errorReply{code: http.StatusBadGateway, message: "Bad gateway", outcome: metrics.OutcomeUpstreamFailed}
	}

	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		return errorReply{code: httpErr.Code, message: httpErr.Message, plain: httpErr.PlainText, outcome: metrics.OutcomeInternal}
	}
	return errorReply{code: http.StatusInternalServerError, message: "Internal server error", outcome: metrics.OutcomeInternal}
}

// Outcome returns the metrics label for a request that ended with err.
func Outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	return classify(err).outcome
}

// ErrorHandler renders gateway errors as {"error": "<message>"}.
// Prefix mismatches keep their plain-text body.
func ErrorHandler(c internal.Context, err error) error {
	reply := classify(err)

	switch {
	case reply.code >= http.StatusInternalServerError:
		if pe, ok := middlewares.AsPanicError(err); ok {
			c.LogError("handler panicked", "panic", pe.Value)
		} else {
			c.LogError("request failed", "status", reply.code, "error", err)
		}
	case reply.code == http.StatusUnauthorized:
		c.LogDebug("request unauthorized", "error", err)
	}

	if reply.plain {
		return c.String(reply.code, reply.message)
	}
	return c.JSON(reply.code, map[string]string{"error": reply.message})
}
