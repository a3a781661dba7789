//go:build linux

package arch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimeoutLayersDisabled(t *testing.T) {
	require.Nil(t, timeoutLayers(0))
}

func TestTimeoutLayersBudgets(t *testing.T) {
	layers := timeoutLayers(5)
	require.Len(t, layers, 3)

	require.Equal(t, "cpu-interval-timer", layers[0].name)
	require.Equal(t, int64(5), layers[0].seconds)

	require.Equal(t, "wall-clock-timer", layers[1].name)
	require.Equal(t, int64(10), layers[1].seconds)

	require.Equal(t, "cpu-rlimit", layers[2].name)
	require.Equal(t, int64(10), layers[2].seconds)
}
