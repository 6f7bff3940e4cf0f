package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Licoreria-api/pkg/logger"
)

func TestNew_ProductionEscribeJSONConNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Info().Msg("no debe salir")
	log.Child("ledger").Warn().Str("material_id", "ACUCAR").Msg("saldo negativo")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "ACUCAR", entry["material_id"])
	assert.Equal(t, "saldo negativo", entry["message"])
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	log.Error().Msg("descartado")
	assert.NotNil(t, log.Child("x"))
}

func TestNew_ServicioYNivelDesconocido(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "VERBOSO", Service: "licoreria-api", Output: &buf})

	log.Debug().Msg("debajo de info")
	log.WithLot("bottle", "L-1").Info().Msg("embotellado")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "licoreria-api", entry["service"])
	assert.Equal(t, "bottle", entry["op"])
	assert.Equal(t, "L-1", entry["lot_id"])
}
