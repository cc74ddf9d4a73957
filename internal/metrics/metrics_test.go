package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncrementTriageOutcome(t *testing.T) {
	before := testutil.ToFloat64(TriageOutcomes.WithLabelValues("blocked"))
	IncrementTriageOutcome("blocked")
	assert.Equal(t, before+1, testutil.ToFloat64(TriageOutcomes.WithLabelValues("blocked")))
}

func TestIncrementAIFallback(t *testing.T) {
	before := testutil.ToFloat64(AIFallbacks.WithLabelValues("categorize", "failed"))
	IncrementAIFallback("categorize", "failed")
	IncrementAIFallback("categorize", "failed")
	assert.Equal(t, before+2, testutil.ToFloat64(AIFallbacks.WithLabelValues("categorize", "failed")))
}

func TestRecordLLMCall(t *testing.T) {
	RecordLLMCall("summarize", "ok", 120*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(LLMCallDuration), 1)
}
