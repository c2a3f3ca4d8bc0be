package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/planner-shop/internal/config"
	"github.com/tuanvumaihuynh/planner-shop/internal/log"
	"github.com/tuanvumaihuynh/planner-shop/pkg/correlationid"
)

func TestNew(t *testing.T) {
	t.Run("Should enrich json records with correlation id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(config.Log{Format: config.LogFormatJSON, Level: slog.LevelInfo}, &buf)

		ctx := correlationid.NewContext(context.Background(), "req-1")
		logger.With(slog.String("service", "http")).InfoContext(ctx, "imported", slog.Int("count", 2))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "imported", rec["msg"])
		assert.Equal(t, "req-1", rec["correlation_id"])
		assert.Equal(t, "http", rec["service"])
		assert.EqualValues(t, 2, rec["count"])
	})

	t.Run("Should respect level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(config.Log{Format: config.LogFormatText, Level: slog.LevelWarn}, &buf)

		logger.Info("hidden")
		assert.Empty(t, buf.String())

		logger.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})
}
