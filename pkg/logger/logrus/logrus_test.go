package logrus

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/raykavin/backview/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Config{Level: "info", JSON: true})
	require.NoError(t, err)

	log.WithField("chart", "trading-profit").WithError(errors.New("boom")).Warnf("dropped %d points", 2)
	log.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "dropped 2 points", entry["msg"])
	assert.Equal(t, "trading-profit", entry["chart"])
	assert.Equal(t, "boom", entry["error"])
}

func TestAdapterLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, Config{Level: "debug"})
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, log.GetLevel())

	log.SetLevel(logger.ErrorLevel)
	assert.Equal(t, logger.ErrorLevel, log.GetLevel())

	log.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Config{Level: "loud"})
	require.Error(t, err)
}
