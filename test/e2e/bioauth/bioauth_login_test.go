package bioauth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestBiometricFlow walks an identity through registration, 1:N login,
// 1:1 verification and stats against a running container.
func TestBiometricFlow(t *testing.T) {
	client := authsdk.NewClient(setupContainer(t, relaxedLimits))
	ctx := t.Context()

	_, alice := registerIdentity(t, client, "alice", template())
	registerIdentity(t, client, "bob", template(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19))

	// Four bits away from alice, well inside the default threshold
	session, decision, err := client.LoginBiometric(ctx, authsdk.ProbeRequest{Template: template(0, 1, 2, 3)})
	require.NoError(t, err)
	require.True(t, decision.Accepted)
	require.Equal(t, alice.Identity.ID, decision.Identity.ID)
	require.Equal(t, 4, *decision.Distance)
	require.NotNil(t, session)

	verdict, err := session.Verify(ctx, authsdk.ProbeRequest{Template: template(100, 101)})
	require.NoError(t, err)
	require.True(t, verdict.Accepted)
	require.Equal(t, 2, *verdict.Distance)

	strict := 1
	verdict, err = session.Verify(ctx, authsdk.ProbeRequest{Template: template(100, 101), Threshold: &strict})
	require.NoError(t, err)
	require.False(t, verdict.Accepted)
	require.Equal(t, "over_threshold", verdict.Reason)

	stats, err := session.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalAttempts)
	require.Equal(t, 2, stats.SuccessfulAttempts)
	require.InDelta(t, 66.67, stats.SuccessRate, 0.001)

	profile, err := session.Profile(ctx)
	require.NoError(t, err)
	require.Len(t, profile.RecentAttempts, 3)
}

func TestPasswordLoginAndDeactivate(t *testing.T) {
	client := authsdk.NewClient(setupContainer(t, relaxedLimits))
	ctx := t.Context()

	_, reg := registerIdentity(t, client, "carol", template(5))

	_, decision, err := client.LoginPassword(ctx, "carol", "wrong")
	require.NoError(t, err)
	require.False(t, decision.Accepted)
	require.Equal(t, "invalid_credentials", decision.Reason)

	session, decision, err := client.LoginPassword(ctx, "carol", testPassword)
	require.NoError(t, err)
	require.True(t, decision.Accepted)

	require.NoError(t, session.Deactivate(ctx, reg.Identity.ID))

	_, decision, err = client.LoginPassword(ctx, "carol", testPassword)
	require.NoError(t, err)
	require.False(t, decision.Accepted)
	require.Equal(t, "account_inactive", decision.Reason)

	_, decision, err = client.LoginBiometric(ctx, authsdk.ProbeRequest{Template: template(5)})
	require.NoError(t, err)
	require.False(t, decision.Accepted)
	require.Equal(t, "no_candidate", decision.Reason)

	_, _, err = client.Register(ctx, authsdk.RegisterRequest{
		Username: "carol",
		Email:    "carol2@example.com",
		Password: testPassword,
	})
	assertStatus(t, err, http.StatusConflict)
}
