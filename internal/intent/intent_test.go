package intent

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roso1102/reboard/internal/model"
	"github.com/roso1102/reboard/internal/seed"
)

func TestExtractBasics(t *testing.T) {
	f := Extract("microcontroller with WiFi for IoT")

	assert.True(t, f.HasIntent)
	assert.True(t, f.Layers[model.LayerWiFi])
	assert.True(t, f.Categories[seed.CategoryMicrocontroller])
	assert.Contains(t, f.Keywords, "wifi")
	assert.Contains(t, f.Keywords, "mcu")
}

func TestExtractCaseAndSubstrings(t *testing.T) {
	lower := Extract("bluetooth motor driver")
	upper := Extract("BLUETOOTH MOTOR DRIVER")
	assert.Equal(t, lower, upper)

	assert.True(t, lower.Layers[model.LayerBLE])
	assert.True(t, lower.Layers[model.LayerPWM])
	assert.True(t, lower.Categories[seed.CategoryDriver])
}

func TestExtractNoIntent(t *testing.T) {
	for _, q := range []string{"", "   ", "something entirely unrelated"} {
		f := Extract(q)
		assert.False(t, f.HasIntent, "query %q", q)
		assert.Empty(t, f.Keywords)
	}
}

func TestExtractKeywordOrderStable(t *testing.T) {
	first := Extract("battery powered sensor with uart")
	second := Extract("battery powered sensor with uart")
	assert.Equal(t, first.Keywords, second.Keywords)
}

type stubExternal struct {
	mu      sync.Mutex
	calls   int
	result  *model.IntentFeatures
	release chan struct{}
}

func (s *stubExternal) ExtractIntent(ctx context.Context, query string) *model.IntentFeatures {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	return s.result
}

func externalResult() *model.IntentFeatures {
	f := model.NewIntentFeatures()
	f.Layers[model.LayerADC] = true
	f.Categories[seed.CategorySensor] = true
	f.Keywords = []string{"soil-moisture"}
	f.HasIntent = true
	return &f
}

func TestExtractorSkipsExternalWhenLocalMatches(t *testing.T) {
	ext := &stubExternal{result: externalResult()}
	e := NewExtractor(ext)

	f := e.Extract(context.Background(), "wifi board")
	assert.True(t, f.HasIntent)
	assert.Equal(t, 0, ext.calls, "external not consulted when local intent exists")
}

func TestExtractorAugmentsWhenLocalEmpty(t *testing.T) {
	ext := &stubExternal{result: externalResult()}
	e := NewExtractor(ext)

	f := e.Extract(context.Background(), "something for my garden project")
	require.True(t, f.HasIntent)
	assert.True(t, f.Layers[model.LayerADC])
	assert.True(t, f.Categories[seed.CategorySensor])
	assert.Equal(t, []string{"soil-moisture"}, f.Keywords)
	assert.Equal(t, 1, ext.calls)
}

func TestExtractorNilExternalAndNilResult(t *testing.T) {
	e := NewExtractor(nil)
	f := e.Extract(context.Background(), "garden project")
	assert.False(t, f.HasIntent)

	e = NewExtractor(&stubExternal{result: nil})
	f = e.Extract(context.Background(), "garden project")
	assert.False(t, f.HasIntent)
}

func TestExtractorLastQueryWins(t *testing.T) {
	release := make(chan struct{})
	ext := &stubExternal{result: externalResult(), release: release}
	e := NewExtractor(ext)

	waitForCalls := func(n int) {
		for {
			ext.mu.Lock()
			done := ext.calls == n
			ext.mu.Unlock()
			if done {
				return
			}
		}
	}

	var wg sync.WaitGroup
	var staleResult, freshResult model.IntentFeatures
	wg.Add(1)
	go func() {
		defer wg.Done()
		staleResult = e.Extract(context.Background(), "old project idea")
	}()
	waitForCalls(1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		freshResult = e.Extract(context.Background(), "new project idea")
	}()
	waitForCalls(2)

	// Both requests are in flight; only the newer one may apply its reply.
	close(release)
	wg.Wait()

	assert.True(t, freshResult.HasIntent, "latest query keeps its external result")
	assert.False(t, staleResult.HasIntent, "superseded response is discarded")
}
