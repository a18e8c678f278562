package http_test

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bioauthhttp "github.com/aussiebroadwan/bioauth/internal/bioauth/http"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/service"
	"github.com/aussiebroadwan/bioauth/internal/bioauth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/aussiebroadwan/bioauth/pkg/cryptox"
	"github.com/aussiebroadwan/bioauth/pkg/httpx"
	"github.com/aussiebroadwan/bioauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const password = "s3cret-passw0rd"

type stubExtractor struct{ tpl biohash.Template }

func (e stubExtractor) Extract(_ context.Context, face, fingerprint []byte) (biohash.Template, error) {
	return e.tpl, nil
}

// newTestServer wires the full router over an in-memory store.
func newTestServer(t *testing.T) *authsdk.Client {
	t.Helper()

	httpx.StrictLimit = httpx.PublicLimit

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "bioauth-test", NumKeys: 2})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy := service.DefaultPolicy()
	hasher := cryptox.NewHasher("pepper")
	ex := stubExtractor{tpl: biohash.New(biohash.DefaultBits).Flip(0, 1)}

	r := bioauthhttp.NewRouter(km.KeySet, km.Verifier, "test", st, logger)
	r.AuthService = &service.AuthService{
		Store:     st,
		Hasher:    hasher,
		Audit:     &service.AuditRecorder{Store: st, Timeout: policy.StoreTimeout},
		Extractor: ex,
		Policy:    policy,
	}
	r.IdentityService = &service.IdentityService{Store: st, Hasher: hasher, Extractor: ex, Policy: policy}
	r.StatsService = &service.StatsService{Store: st, Policy: policy}
	r.SessionService = &service.SessionService{KeyManager: km, Issuer: "bioauth-test", TTL: time.Hour}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return authsdk.NewClient(srv.URL)
}

func zeroTemplate() string {
	return biohash.Encode(biohash.New(biohash.DefaultBits))
}

func register(t *testing.T, c *authsdk.Client, username, template string) (*authsdk.Session, *authsdk.RegisterResponse) {
	t.Helper()
	session, resp, err := c.Register(context.Background(), authsdk.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		Template: template,
	})
	require.NoError(t, err)
	return session, resp
}

func TestRegisterAndPasswordLogin(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	_, reg := register(t, c, "alice", zeroTemplate())
	require.True(t, reg.Identity.Enrolled)
	require.True(t, reg.Identity.Active)
	require.Equal(t, "Bearer", reg.TokenType)
	require.Equal(t, 3600, reg.ExpiresIn)

	session, decision, err := c.LoginPassword(ctx, "alice", password)
	require.NoError(t, err)
	require.True(t, decision.Accepted)
	require.Equal(t, "password", decision.Method)
	require.Nil(t, decision.Threshold)
	require.NotNil(t, session)
	require.NotNil(t, decision.Identity.LastAuthAt)

	session, decision, err = c.LoginPassword(ctx, "alice", "wrong")
	require.NoError(t, err)
	require.False(t, decision.Accepted)
	require.Equal(t, "invalid_credentials", decision.Reason)
	require.Nil(t, session)
}

func TestRegisterErrors(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)
	register(t, c, "alice", "")

	_, _, err := c.Register(ctx, authsdk.RegisterRequest{Username: "alice", Email: "x@example.com", Password: password})
	require.ErrorIs(t, err, authsdk.ErrDuplicateIdentity)

	_, _, err = c.Register(ctx, authsdk.RegisterRequest{Username: "bob", Email: "bob@example.com"})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	_, _, err = c.Register(ctx, authsdk.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: password, Template: "1,0,2"})
	require.ErrorIs(t, err, authsdk.ErrInvalidProbe)
}

func TestRegisterWithImages(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	img := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png"))
	_, reg, err := c.Register(ctx, authsdk.RegisterRequest{
		Username:         "carol",
		Email:            "carol@example.com",
		Password:         password,
		FaceImage:        img,
		FingerprintImage: img,
	})
	require.NoError(t, err)
	require.True(t, reg.Identity.Enrolled)

	// The stub extractor returns the same template for any images.
	_, decision, err := c.LoginBiometric(ctx, authsdk.ProbeRequest{FaceImage: img, FingerprintImage: img})
	require.NoError(t, err)
	require.True(t, decision.Accepted)
	require.Equal(t, 0, *decision.Distance)
}

func TestBiometricLogin(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)
	_, reg := register(t, c, "alice", zeroTemplate())

	probe := biohash.Encode(biohash.New(biohash.DefaultBits).Flip(3, 9, 27))

	session, decision, err := c.LoginBiometric(ctx, authsdk.ProbeRequest{Template: probe})
	require.NoError(t, err)
	require.True(t, decision.Accepted)
	require.Equal(t, "biometric-login", decision.Method)
	require.Equal(t, reg.Identity.ID, decision.Identity.ID)
	require.Equal(t, 3, *decision.Distance)
	require.Equal(t, 15, *decision.Threshold)
	require.NotNil(t, session)

	session, decision, err = c.LoginBiometric(ctx, authsdk.ProbeRequest{Template: probe, Threshold: ptr(2)})
	require.NoError(t, err)
	require.False(t, decision.Accepted)
	require.Equal(t, "over_threshold", decision.Reason)
	require.Equal(t, 3, *decision.Distance)
	require.Nil(t, decision.Identity)
	require.Nil(t, session)

	_, _, err = c.LoginBiometric(ctx, authsdk.ProbeRequest{Template: probe, Threshold: ptr(-1)})
	require.ErrorIs(t, err, authsdk.ErrInvalidRequest)

	_, _, err = c.LoginBiometric(ctx, authsdk.ProbeRequest{Template: "1,0"})
	require.ErrorIs(t, err, authsdk.ErrInvalidProbe)

	_, _, err = c.LoginBiometric(ctx, authsdk.ProbeRequest{})
	require.ErrorIs(t, err, authsdk.ErrInvalidProbe)
}

func TestVerifyProfileAndStats(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)
	session, reg := register(t, c, "alice", zeroTemplate())

	decision, err := session.Verify(ctx, authsdk.ProbeRequest{Template: zeroTemplate()})
	require.NoError(t, err)
	require.True(t, decision.Accepted)
	require.Equal(t, "biometric-verify", decision.Method)
	require.Nil(t, decision.Token)

	far := biohash.Encode(biohash.New(biohash.DefaultBits).Flip(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19))
	decision, err = session.Verify(ctx, authsdk.ProbeRequest{Template: far})
	require.NoError(t, err)
	require.False(t, decision.Accepted)
	require.Equal(t, 20, *decision.Distance)

	profile, err := session.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, reg.Identity.ID, profile.Identity.ID)
	require.Len(t, profile.RecentAttempts, 2)
	require.False(t, profile.RecentAttempts[0].Success)

	stats, err := session.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalAttempts)
	require.Equal(t, 1, stats.SuccessfulAttempts)
	require.Equal(t, 50.0, stats.SuccessRate)
	require.Equal(t, 10.0, stats.AverageDistance)
	require.Equal(t, 0, *stats.BestDistance)
	require.Equal(t, 20, *stats.WorstDistance)
}

func TestVerifyWithoutTemplate(t *testing.T) {
	c := newTestServer(t)
	session, _ := register(t, c, "bare", "")

	_, err := session.Verify(context.Background(), authsdk.ProbeRequest{Template: zeroTemplate()})
	require.ErrorIs(t, err, authsdk.ErrNoEnrolledTemplate)
}

func TestSessionRequired(t *testing.T) {
	c := newTestServer(t)

	_, err := c.NewSession("not-a-token").Profile(context.Background())
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)
	session, reg := register(t, c, "alice", zeroTemplate())
	_, other := register(t, c, "bob", "")

	t.Run("other identity is forbidden", func(t *testing.T) {
		err := session.Deactivate(ctx, other.Identity.ID)
		require.ErrorIs(t, err, authsdk.ErrForbidden)
	})

	t.Run("biometric session is not enough", func(t *testing.T) {
		bio, decision, err := c.LoginBiometric(ctx, authsdk.ProbeRequest{Template: zeroTemplate()})
		require.NoError(t, err)
		require.True(t, decision.Accepted)

		err = bio.Deactivate(ctx, reg.Identity.ID)
		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	})

	t.Run("self", func(t *testing.T) {
		require.NoError(t, session.Deactivate(ctx, reg.Identity.ID))

		_, decision, err := c.LoginPassword(ctx, "alice", password)
		require.NoError(t, err)
		require.False(t, decision.Accepted)
		require.Equal(t, "account_inactive", decision.Reason)

		_, decision, err = c.LoginBiometric(ctx, authsdk.ProbeRequest{Template: zeroTemplate()})
		require.NoError(t, err)
		require.False(t, decision.Accepted)
		require.Equal(t, "no_candidate", decision.Reason)
	})
}

func TestHealthAndJWKS(t *testing.T) {
	ctx := context.Background()
	c := newTestServer(t)

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)

	jwks, err := c.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 2)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
}

func ptr(v int) *int { return &v }
