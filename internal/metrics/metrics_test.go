package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBeforeInitIsNoop(t *testing.T) {
	// Must not panic when metrics were never registered.
	RecordParameterPage(3)
	RecordSecretsLoaded(2)
	RecordFetchFailure("parameter")
	RecordRefresh("all")
}

func TestCountersAfterInit(t *testing.T) {
	Init()

	pagesBefore := testutil.ToFloat64(parameterPagesTotal)
	paramsBefore := testutil.ToFloat64(parametersLoadedTotal)
	secretsBefore := testutil.ToFloat64(secretsLoadedTotal)
	failuresBefore := testutil.ToFloat64(fetchFailuresTotal.WithLabelValues("secret"))
	refreshesBefore := testutil.ToFloat64(refreshesTotal.WithLabelValues("parameters"))

	RecordParameterPage(4)
	RecordSecretsLoaded(2)
	RecordFetchFailure("secret")
	RecordRefresh("parameters")

	assert.Equal(t, pagesBefore+1, testutil.ToFloat64(parameterPagesTotal))
	assert.Equal(t, paramsBefore+4, testutil.ToFloat64(parametersLoadedTotal))
	assert.Equal(t, secretsBefore+2, testutil.ToFloat64(secretsLoadedTotal))
	assert.Equal(t, failuresBefore+1, testutil.ToFloat64(fetchFailuresTotal.WithLabelValues("secret")))
	assert.Equal(t, refreshesBefore+1, testutil.ToFloat64(refreshesTotal.WithLabelValues("parameters")))
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
	assert.True(t, metricsRegistered)
}
