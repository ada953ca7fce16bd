package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-reporter/internal/domain/entities"
)

func TestMetrics_RunFinished(t *testing.T) {
	m := New()
	m.RunFinished(entities.RunStateDone)
	m.RunFinished(entities.RunStateDone)
	m.RunFinished(entities.RunStateAnalysisFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("analysis_failed")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveStage(entities.StageAnalysis, true, 150*time.Millisecond)
	m.ObserveStage(entities.StagePersistence, false, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `meeting_reporter_stage_duration_seconds_count{outcome="success",stage="analysis"} 1`)
	assert.Contains(t, string(body), `meeting_reporter_stage_duration_seconds_count{outcome="error",stage="persistence"} 1`)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RunFinished(entities.RunStateDone)
	m.ObserveStage(entities.StageAnalysis, true, time.Second)
}
