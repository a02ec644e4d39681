package service

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"mingle/app/auth"
	"mingle/app/config"
	"mingle/app/routes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAppServerRequiresSecret(t *testing.T) {
	cfg := setupTestDB(t)
	cfg.TokenSecret = ""

	err := RunAppServer(context.Background(), cfg, "test")
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestOpenStoreBadger(t *testing.T) {
	cfg := setupTestDB(t)

	st, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, st.posts)
	assert.NotNil(t, st.users)
	require.NoError(t, st.close())
	assert.DirExists(t, cfg.BadgerPath)
}

func TestRunServerGracefulShutdown(t *testing.T) {
	cfg := setupTestDB(t)
	st, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer st.close()

	tokens, err := auth.NewTokenIssuer([]byte("secret"), 0)
	require.NoError(t, err)
	logger := newLogger(io.Discard, cfg.LogLevel)
	router := routes.SetupRoutes(routes.Dependencies{
		Posts:   st.posts,
		Users:   st.users,
		Tokens:  tokens,
		Logger:  logger,
		Version: "test",
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, newHTTPServer(router), ln, logger)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
