package observability_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Licoreria-api/internal/observability"
)

func TestMetrics_Contadores(t *testing.T) {
	m := observability.NewMetrics()
	m.Operation("bottle", nil)
	m.Operation("bottle", errors.New("x"))
	m.StockNegative("TAMPA")
	m.StockNegative("TAMPA")
	m.AuditWriteFailed()

	count, err := testutil.GatherAndCount(m.Registry(),
		"licoreria_pipeline_operations_total",
		"licoreria_stock_negative_total",
		"licoreria_audit_write_failures_total")
	assert.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestMetrics_NilEsSeguro(t *testing.T) {
	var m *observability.Metrics
	assert.NotPanics(t, func() {
		m.Operation("x", nil)
		m.StockNegative("y")
		m.AuditWriteFailed()
	})
	assert.Nil(t, m.Registry())
}
