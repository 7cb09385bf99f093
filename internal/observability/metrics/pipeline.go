package metrics

import (
	"time"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

// ObservePipeline records one finished retrieval pipeline.
func (m *HTTPServerMetrics) ObservePipeline(strategy domain.Strategy, contextSize int, grounding float64, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	label := string(strategy)

	m.pipelineTotal.WithLabelValues(m.service, label, status).Inc()
	m.pipelineDuration.WithLabelValues(m.service, label).Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.pipelineContextSize.WithLabelValues(m.service, label).Observe(float64(contextSize))
	m.pipelineGrounding.WithLabelValues(m.service, label).Observe(grounding)
}
