package auth

// Policy is the closed set of request authentication schemes:
// Bearer, Basic and Disabled. Gate.Check dispatches on it once per request.
type Policy interface {
	// Name is a short label for logs and metrics.
	Name() string

	isPolicy()
}

// BearerPrefix is the literal an Authorization header must start with.
const BearerPrefix = "Bearer "

// Bearer authorizes a request when the session store holds
// SessionKeyPrefix+token, where token follows "Bearer " in the
// Authorization header. The stored value is ignored.
type Bearer struct {
	SessionKeyPrefix string
}

// Basic authorizes a request when Header carries exactly Value.
// The comparison is case-sensitive and byte-for-byte.
type Basic struct {
	Header string
	Value  string
}

// Disabled authorizes every request.
type Disabled struct{}

func (Bearer) Name() string   { return "bearer" }
func (Basic) Name() string    { return "basic" }
func (Disabled) Name() string { return "none" }

func (Bearer) isPolicy()   {}
func (Basic) isPolicy()    {}
func (Disabled) isPolicy() {}
