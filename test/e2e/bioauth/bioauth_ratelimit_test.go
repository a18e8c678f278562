package bioauth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitBiometricLogin checks the strict profile (10 req/min) guards
// 1:N identification against probe guessing.
func TestRateLimitBiometricLogin(t *testing.T) {
	client := authsdk.NewClient(setupContainer(t, nil))
	ctx := t.Context()

	probe := authsdk.ProbeRequest{Template: template(1, 2, 3)}
	for i := range 10 {
		_, decision, err := client.LoginBiometric(ctx, probe)
		require.NoError(t, err, "request %d should not be rate limited", i+1)
		require.False(t, decision.Accepted)
	}

	_, _, err := client.LoginBiometric(ctx, probe)
	assertStatus(t, err, http.StatusTooManyRequests)
}
