package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/objgate/internal"
	"github.com/dmitrymomot/objgate/middlewares"
)

func runRecover(t *testing.T, h internal.HandlerFunc, opts ...middlewares.RecoverOption) error {
	t.Helper()
	ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	return middlewares.Recover(opts...)(h)(ctx)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("panic becomes PanicError with stack", func(t *testing.T) {
		t.Parallel()

		err := runRecover(t, func(internal.Context) error { panic("test panic") })

		pe, ok := middlewares.AsPanicError(err)
		require.True(t, ok)
		require.Equal(t, "test panic", pe.Value)
		require.NotEmpty(t, pe.Stack)
	})

	t.Run("handler error passes through", func(t *testing.T) {
		t.Parallel()

		want := errors.New("handler failed")
		err := runRecover(t, func(internal.Context) error { return want })
		require.Same(t, want, err)
		require.False(t, middlewares.IsPanicError(err))

		require.NoError(t, runRecover(t, func(internal.Context) error { return nil }))
	})

	t.Run("panic value types are preserved", func(t *testing.T) {
		t.Parallel()

		type custom struct{ Code int }
		for _, v := range []any{"s", 42, errors.New("e"), custom{Code: 500}} {
			err := runRecover(t, func(internal.Context) error { panic(v) })
			pe, ok := middlewares.AsPanicError(err)
			require.True(t, ok)
			require.Equal(t, v, pe.Value)
		}
	})

	t.Run("panic(nil) is caught", func(t *testing.T) {
		t.Parallel()

		err := runRecover(t, func(internal.Context) error { panic(nil) })
		pe, ok := middlewares.AsPanicError(err)
		require.True(t, ok)

		var pnErr *runtime.PanicNilError
		require.ErrorAs(t, pe, &pnErr)
	})

	t.Run("disable stack", func(t *testing.T) {
		t.Parallel()

		err := runRecover(t, func(internal.Context) error { panic("x") },
			middlewares.WithRecoverStackSize(8192),
			middlewares.WithRecoverDisablePrintStack(),
		)
		pe, ok := middlewares.AsPanicError(err)
		require.True(t, ok)
		require.Nil(t, pe.Stack)
	})

	t.Run("stack size bounds trace", func(t *testing.T) {
		t.Parallel()

		err := runRecover(t, func(internal.Context) error { panic("x") }, middlewares.WithRecoverStackSize(64))
		pe, _ := middlewares.AsPanicError(err)
		require.NotEmpty(t, pe.Stack)
		require.LessOrEqual(t, len(pe.Stack), 64)

		err = runRecover(t, func(internal.Context) error { panic("x") }, middlewares.WithRecoverStackSize(0))
		pe, _ = middlewares.AsPanicError(err)
		require.NotEmpty(t, pe.Stack)
	})

	t.Run("abort handler is re-panicked", func(t *testing.T) {
		t.Parallel()

		require.PanicsWithValue(t, http.ErrAbortHandler, func() {
			_ = runRecover(t, func(internal.Context) error { panic(http.ErrAbortHandler) })
		})
	})
}
