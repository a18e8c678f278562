package cryptox_test

import (
	"testing"

	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{"128-bit token", cryptox.TokenSize128, 22},
		{"256-bit token", cryptox.TokenSize256, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := cryptox.GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, a, tt.want)

			b, err := cryptox.GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, a, b)
		})
	}
}

func TestGenerateTokenInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := cryptox.GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}
