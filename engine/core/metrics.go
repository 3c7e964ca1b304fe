package core

import "github.com/spaghettifunk/propengine/engine/containers"

const AVG_COUNT int = 30

// FrameMetrics keeps a rolling frame-time average and a frames-per-second counter.
type FrameMetrics struct {
	msTimes            *containers.RingQueue[float64]
	msSum              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{msTimes: containers.NewRingQueue[float64](AVG_COUNT)}
}

// Update records one frame that took frameElapsedTime seconds.
func (m *FrameMetrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	if evicted, ok := m.msTimes.Push(frameMS); ok {
		m.msSum -= evicted
	}
	m.msSum += frameMS

	m.accumulatedFrameMS += frameMS
	m.frames++
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}
}

func (m *FrameMetrics) FPS() float64 {
	return m.fps
}

// FrameTime is the average frame duration in milliseconds over the last AVG_COUNT frames.
func (m *FrameMetrics) FrameTime() float64 {
	if m.msTimes.Len() == 0 {
		return 0
	}
	return m.msSum / float64(m.msTimes.Len())
}
