package redis

import (
	"net"
	"strconv"
)

// DefaultPort is used when an Endpoint leaves Port unset.
const DefaultPort = 6379

// Endpoint describes one session-store server.
type Endpoint struct {
	Host     string
	Username string
	Password string
	Port     int
	DB       int
}

// Addr returns host:port.
func (e Endpoint) Addr() string {
	port := e.Port
	if port <= 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(e.Host, strconv.Itoa(port))
}

// Key is host:port, suffixed with /db for a non-zero database. Endpoints that
// differ only in credentials share a key, and therefore a pool.
func (e Endpoint) Key() string {
	if e.DB != 0 {
		return e.Addr() + "/" + strconv.Itoa(e.DB)
	}
	return e.Addr()
}

// String is the Key; it never includes credentials.
func (e Endpoint) String() string {
	return e.Key()
}
