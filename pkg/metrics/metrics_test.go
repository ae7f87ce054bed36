package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors_Counters(t *testing.T) {
	c := NewCollectors()

	c.ObserveEvaluation("collection", 2*time.Millisecond)
	c.ObserveEvaluation("collection", time.Millisecond)
	c.ObserveEvaluation("preview", time.Millisecond)
	c.IncCacheHits()
	c.IncCacheMisses()
	c.IncCacheMisses()
	c.IncRejectedRules()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.evaluationsTotal.WithLabelValues("collection")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.evaluationsTotal.WithLabelValues("preview")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejectedRules))
}

func TestCollectors_CollectionSize(t *testing.T) {
	c := NewCollectors()

	c.SetCollectionSize("SF HD", 3, 1)
	c.SetCollectionSize("SF HD", 2, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.collectionSize.WithLabelValues("SF HD", "character")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.collectionSize.WithLabelValues("SF HD", "stage")))
}

func TestCollectors_Handler(t *testing.T) {
	c := NewCollectors()
	c.IncCacheHits()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mugenvault_cache_hits_total 1")
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	assert.NotPanics(t, func() {
		r.ObserveEvaluation("collection", time.Second)
		r.IncCacheHits()
		r.IncCacheMisses()
		r.IncRejectedRules()
		r.SetCollectionSize("x", 1, 1)
	})
}
