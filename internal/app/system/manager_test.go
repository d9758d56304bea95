package system

import (
	"context"
	"errors"
	"testing"
)

type fakeService struct {
	name     string
	startErr error
	started  bool
	stopped  bool
	order    *[]string
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped = true
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	return nil
}

func TestManagerStartStopOrder(t *testing.T) {
	var stops []string
	a := &fakeService{name: "a", order: &stops}
	b := &fakeService{name: "b", order: &stops}

	m := NewManager()
	if err := m.Register(a); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := m.Register(b); err != nil {
		t.Fatalf("register b: %v", err)
	}
	if err := m.Register(&fakeService{name: "a"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !a.started || !b.started {
		t.Fatal("services not started")
	}

	if err := m.Register(&fakeService{name: "c"}); err == nil {
		t.Fatal("expected registration after start to fail")
	}

	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(stops) != 2 || stops[0] != "b" || stops[1] != "a" {
		t.Fatalf("stop order = %v, want [b a]", stops)
	}
}

func TestManagerStartFailureRollsBack(t *testing.T) {
	a := &fakeService{name: "a"}
	boom := &fakeService{name: "boom", startErr: errors.New("boom")}

	m := NewManager()
	_ = m.Register(a)
	_ = m.Register(boom)

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected start failure")
	}
	if !a.stopped {
		t.Fatal("previously started service was not rolled back")
	}
}
