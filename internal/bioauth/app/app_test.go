package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/bioauth/pkg/authsdk"
	"github.com/aussiebroadwan/bioauth/pkg/biohash"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	return Config{
		Issuer:               "bioauth-test",
		NumKeys:              1,
		DatabaseDriver:       DriverSQLite,
		DatabaseFile:         filepath.Join(dir, "bioauth.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		Threshold:            15,
		TemplateBits:         biohash.DefaultBits,
		StoreTimeout:         time.Second,
		SessionTTL:           time.Hour,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestApplicationServesAndShutsDown(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)

	app.housekeepingService.Start()

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	ctx := context.Background()
	c := authsdk.NewClient(srv.URL)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	tpl := biohash.Encode(biohash.New(biohash.DefaultBits))
	_, _, err = c.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
		Template: tpl,
	})
	require.NoError(t, err)

	session, decision, err := c.LoginBiometric(ctx, authsdk.ProbeRequest{Template: tpl})
	require.NoError(t, err)
	require.True(t, decision.Accepted)
	require.NotNil(t, session)

	require.NoError(t, app.Shutdown())
}

func TestApplicationRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = "oracle"

	_, err := New(cfg)
	require.ErrorContains(t, err, "unknown database driver")
}

func TestOpenStoreMemory(t *testing.T) {
	db, err := OpenStore(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	empty, err := db.Identities().IsEmpty(context.Background())
	require.NoError(t, err)
	require.True(t, empty)

	require.NoError(t, db.Ping(context.Background()))
}
