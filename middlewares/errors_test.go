package middlewares_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/objgate/middlewares"
)

func TestPanicError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "string", value: "boom", want: "panic: boom"},
		{name: "int", value: 42, want: "panic: 42"},
		{name: "nil", value: nil, want: "panic: <nil>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, (&middlewares.PanicError{Value: tt.value}).Error())
		})
	}

	t.Run("unwraps error values", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("cause")
		err := fmt.Errorf("wrapped: %w", &middlewares.PanicError{Value: cause})
		require.ErrorIs(t, err, cause)
		require.True(t, middlewares.IsPanicError(err))

		pe, ok := middlewares.AsPanicError(err)
		require.True(t, ok)
		require.Equal(t, cause, pe.Value)
	})

	t.Run("non-panic errors", func(t *testing.T) {
		t.Parallel()

		require.False(t, middlewares.IsPanicError(nil))
		require.False(t, middlewares.IsPanicError(errors.New("plain")))
		_, ok := middlewares.AsPanicError(errors.New("plain"))
		require.False(t, ok)
		require.Nil(t, (&middlewares.PanicError{Value: "x"}).Unwrap())
	})
}
