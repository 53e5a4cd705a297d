package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapFormatsCause(t *testing.T) {
	err := Wrap(CodeWeatherUnavailable, "forecast unavailable", errors.New("timeout"))
	require.Equal(t, "forecast unavailable: timeout", err.Error())
	require.True(t, IsCode(err, CodeWeatherUnavailable))

	bare := Wrap(CodeInvalidInput, "destination is required", nil)
	require.Equal(t, "destination is required", bare.Error())
	require.Nil(t, errors.Unwrap(bare))
}

func TestCodeOfWrappedChain(t *testing.T) {
	inner := Wrap(CodeInvalidInput, "bad date", nil)
	outer := fmt.Errorf("handler: %w", inner)
	require.Equal(t, CodeInvalidInput, CodeOf(outer))
	require.Equal(t, "", CodeOf(errors.New("plain")))
	require.False(t, IsCode(nil, CodeInvalidInput))
}
