package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFallback(t *testing.T) {
	assert.Equal(t, log.DebugLevel, New("debug").GetLevel())
	assert.Equal(t, log.InfoLevel, New("nonsense").GetLevel())
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithOutput("info", &buf)

	l.WithField("order_id", 12).Info("order created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order created", entry["msg"])
	assert.Equal(t, float64(12), entry["order_id"])
	assert.Equal(t, "info", entry["level"])
}
