// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

package ctxutil_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/ctxutil"
	"github.com/S77VEN31/coopesanramon-mobile-sub001/internal/platform/sec"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ctxutil.WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", ctxutil.GetRequestID(ctx))
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Equal(t, "", ctxutil.GetRequestID(context.Background()))
}

func TestLoggerFallback(t *testing.T) {
	// Without an injected logger the default logger is returned, never nil.
	logger := ctxutil.GetLogger(context.Background())
	assert.NotNil(t, logger)

	custom := slog.Default().With(slog.String("scope", "test"))
	ctx := ctxutil.WithLogger(context.Background(), custom)
	assert.Same(t, custom, ctxutil.GetLogger(ctx))
}

func TestAuthUserRoundTrip(t *testing.T) {
	claims := &sec.Claims{Subject: "102340567"}

	ctx := ctxutil.WithAuthUser(context.Background(), claims)
	assert.Same(t, claims, ctxutil.GetAuthUser(ctx))
	assert.Nil(t, ctxutil.GetAuthUser(context.Background()))
}

func TestClientIPRoundTrip(t *testing.T) {
	ctx := ctxutil.WithClientIP(context.Background(), "10.0.0.9")
	assert.Equal(t, "10.0.0.9", ctxutil.GetClientIP(ctx))
	assert.Equal(t, "", ctxutil.GetClientIP(context.Background()))
}
