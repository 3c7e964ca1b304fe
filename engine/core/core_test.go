package core

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestEventBusDispatch(t *testing.T) {
	bus := NewEventBus()
	var order []string

	a, b := "a", "b"
	if !bus.Register(EventCodeKeyPressed, &a, func(ctx EventContext) bool {
		order = append(order, "a")
		return ctx.Key == 1
	}) {
		t.Fatal("register a")
	}
	bus.Register(EventCodeKeyPressed, &b, func(EventContext) bool {
		order = append(order, "b")
		return false
	})
	if bus.Register(EventCodeKeyPressed, &a, func(EventContext) bool { return false }) {
		t.Error("duplicate registration accepted")
	}

	// handled by a, b never sees it
	if !bus.Fire(EventContext{Code: EventCodeKeyPressed, Key: 1}) {
		t.Error("event not reported as handled")
	}
	if bus.Fire(EventContext{Code: EventCodeKeyPressed, Key: 2}) {
		t.Error("unhandled event reported as handled")
	}
	if got := strings.Join(order, ""); got != "aab" {
		t.Errorf("call order %q", got)
	}

	if !bus.Unregister(EventCodeKeyPressed, &a) || bus.Unregister(EventCodeKeyPressed, &a) {
		t.Error("unregister should succeed exactly once")
	}
	order = nil
	bus.Fire(EventContext{Code: EventCodeKeyPressed, Key: 1})
	if got := strings.Join(order, ""); got != "b" {
		t.Errorf("after unregister call order %q", got)
	}

	bus.Shutdown()
	if bus.Fire(EventContext{Code: EventCodeKeyPressed}) || len(order) != 1 {
		t.Error("listeners survived shutdown")
	}
}

func TestFrameMetrics(t *testing.T) {
	m := NewFrameMetrics()
	if m.FrameTime() != 0 || m.FPS() != 0 {
		t.Fatal("fresh metrics not zero")
	}
	for i := 0; i < 70; i++ {
		m.Update(0.010)
	}
	if ft := m.FrameTime(); ft < 9.999 || ft > 10.001 {
		t.Errorf("FrameTime = %v", ft)
	}
	// slower frames push the fast ones out of the window
	for i := 0; i < AVG_COUNT; i++ {
		m.Update(0.020)
	}
	if ft := m.FrameTime(); ft < 19.999 || ft > 20.001 {
		t.Errorf("FrameTime = %v", ft)
	}
	if m.FPS() == 0 {
		t.Error("FPS never computed after more than a second of frames")
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)
	defer SetLogLevel("debug")

	if err := SetLogLevel("loud"); err == nil {
		t.Error("accepted an unknown level")
	}
	if err := SetLogLevel("warn"); err != nil {
		t.Fatal(err)
	}
	LogInfo("hidden")
	LogWarn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	if c.Elapsed() != 0 {
		t.Error("stopped clock advanced")
	}
	c.Start()
	c.Update()
	first := c.Elapsed()
	c.Stop()
	c.Update()
	if c.Elapsed() != first {
		t.Error("stopped clock advanced")
	}
}
