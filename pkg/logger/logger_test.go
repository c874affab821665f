package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Entregas-api/pkg/logger"
)

func TestNew_JSONConServicioYNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "WARN", Service: "entregas-api", Out: &buf})

	log.Info().Msg("no se escribe")
	log.Session("s-1").Warn().Str("item", "Tornillo").Msg("existencia baja")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "info queda por debajo del nivel")

	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, "warn", event["level"])
	assert.Equal(t, "entregas-api", event["service"])
	assert.Equal(t, "s-1", event["session"])
	assert.Equal(t, "Tornillo", event["item"])
}

func TestNew_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "ruidoso", Out: &buf})

	log.Debug().Msg("no")
	log.Info().Msg("si")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
