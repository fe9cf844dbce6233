package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameMetricsAverage(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < int(AVG_COUNT)-1; i++ {
		m.Update(0.03)
	}
	assert.Zero(t, m.FrameTime())

	m.Update(0.03)
	assert.InDelta(t, 30.0, m.FrameTime(), 1e-9)
}

func TestFrameMetricsFPS(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < 33; i++ {
		m.Update(0.03)
	}
	assert.Zero(t, m.FPS())

	m.Update(0.03)
	fps, avg := m.Frame()
	assert.Equal(t, 33.0, fps)
	assert.InDelta(t, 30.0, avg, 1e-9)
}

func TestClockOnlyAdvancesWhileStarted(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	c.Update()
	assert.GreaterOrEqual(t, c.Elapsed(), 0.0)

	c.Stop()
	stopped := c.Elapsed()
	c.Update()
	assert.Equal(t, stopped, c.Elapsed())
}
