package objgate_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/objgate"
)

type files struct{}

func (files) Routes(r objgate.Router) {
	r.GET("/files/*", func(c objgate.Context) error {
		if c.Param("*") == "missing" {
			return objgate.ErrNotFound("No such file")
		}
		return c.String(http.StatusOK, c.Param("*"))
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	app := objgate.New(
		objgate.WithHandlers(files{}),
		objgate.WithHealthChecks(),
		objgate.WithMount("/static", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})),
	)

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/files/a/b.txt", http.StatusOK, "a/b.txt"},
		{"/files/missing", http.StatusNotFound, "No such file"},
		{"/static/x", http.StatusTeapot, ""},
		{"/health/live", http.StatusOK, "OK"},
		{"/health/ready", http.StatusOK, "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.code, rec.Code)
			require.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	err := errors.Join(errors.New("wrapped"), objgate.ErrBadGateway("Bad gateway"))
	httpErr := objgate.AsHTTPError(err)
	require.NotNil(t, httpErr)
	require.Equal(t, http.StatusBadGateway, httpErr.Code)

	require.Nil(t, objgate.AsHTTPError(errors.New("plain")))
}
