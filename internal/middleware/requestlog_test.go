package middleware_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, api := humatest.New(t)

	api.UseMiddleware(middleware.RequestLogger(zap.New(core)))

	huma.Register(api, huma.Operation{Method: http.MethodGet, Path: "/ok"}, ping)
	huma.Register(api, huma.Operation{Method: http.MethodGet, Path: "/missing"},
		func(context.Context, *struct{}) (*pingOutput, error) {
			return nil, huma.Error404NotFound("nope")
		})

	t.Run("logs successful requests at info", func(t *testing.T) {
		require.Equal(t, http.StatusOK, api.Get("/ok").Code)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)

		entry := entries[0]
		fields := entry.ContextMap()

		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		assert.Equal(t, "request handled", entry.Message)
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/ok", fields["path"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
		assert.Equal(t, "192.0.2.1", fields["client_ip"])
		assert.Contains(t, fields, "duration")
	})

	t.Run("logs client errors at warn", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, api.Get("/missing").Code)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.EqualValues(t, http.StatusNotFound, entries[0].ContextMap()["status"])
	})
}
