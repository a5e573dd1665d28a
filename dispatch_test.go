package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/status-pulse/config"
	"gitlab.com/tinyland/lab/status-pulse/metrics"
	"gitlab.com/tinyland/lab/status-pulse/render"
)

type fakeService struct {
	artifact    []byte
	err         error
	cleared     int
	clearCalls  int
	statusCalls int
}

func (f *fakeService) Status(ctx context.Context) ([]byte, error) {
	f.statusCalls++
	return f.artifact, f.err
}

func (f *fakeService) DescribeConfig() string { return "theme: light" }

func (f *fakeService) ClearCache() int {
	f.clearCalls++
	return f.cleared
}

func newTestDispatcher(svc *fakeService, superOnly bool) *Dispatcher {
	cfg := config.DefaultConfig()
	cfg.OnlySuperuser = superOnly
	return NewDispatcher(svc, cfg, nil)
}

func TestStatusAliasesReturnImage(t *testing.T) {
	svc := &fakeService{artifact: []byte("png")}
	d := newTestDispatcher(svc, false)

	for _, alias := range []string{"status", "状态", "运行状态"} {
		reply := d.Dispatch(context.Background(), Invocation{Command: alias})
		if string(reply.Image) != "png" {
			t.Errorf("%s: image = %q, want png", alias, reply.Image)
		}
		if reply.Text != "" {
			t.Errorf("%s: unexpected text %q", alias, reply.Text)
		}
	}
	if svc.statusCalls != 3 {
		t.Errorf("status calls = %d, want 3", svc.statusCalls)
	}
}

func TestSuperuserGateBlocksOrdinaryUsers(t *testing.T) {
	svc := &fakeService{artifact: []byte("png")}
	d := newTestDispatcher(svc, true)

	reply := d.Dispatch(context.Background(), Invocation{Command: "status"})
	if reply.Image != nil {
		t.Error("gated invocation must not return an image")
	}
	if !strings.Contains(reply.Text, "superuser") {
		t.Errorf("text = %q, want a superuser notice", reply.Text)
	}
	if svc.statusCalls != 0 {
		t.Error("gated invocation must not reach the service")
	}

	reply = d.Dispatch(context.Background(), Invocation{Command: "status", IsSuperuser: true})
	if reply.Image == nil {
		t.Error("superuser invocation should pass the gate")
	}
}

func TestConfigCommandReturnsSummary(t *testing.T) {
	d := newTestDispatcher(&fakeService{}, false)

	reply := d.Dispatch(context.Background(), Invocation{Command: "status_config"})
	if !strings.Contains(reply.Text, "theme") {
		t.Errorf("text = %q, want the config summary", reply.Text)
	}
}

func TestClearCacheCommandReportsCount(t *testing.T) {
	svc := &fakeService{cleared: 3}
	d := newTestDispatcher(svc, false)

	reply := d.Dispatch(context.Background(), Invocation{Command: "status_clear_cache"})
	if !strings.Contains(reply.Text, "3") {
		t.Errorf("text = %q, want the removal count", reply.Text)
	}
	if svc.clearCalls != 1 {
		t.Errorf("clear calls = %d, want 1", svc.clearCalls)
	}
}

func TestCollectionFailureBecomesTextReply(t *testing.T) {
	svc := &fakeService{err: &metrics.CollectionError{Op: "sample cpu", Err: errors.New("boom")}}
	d := newTestDispatcher(svc, false)

	reply := d.Dispatch(context.Background(), Invocation{Command: "status"})
	if reply.Image != nil {
		t.Error("failed request must not return an image")
	}
	if !strings.Contains(reply.Text, "host metrics") {
		t.Errorf("text = %q, want a metrics failure notice", reply.Text)
	}
	if !strings.Contains(reply.Text, "sample cpu") {
		t.Errorf("text = %q, want the failing probe named", reply.Text)
	}
}

func TestRenderFailureBecomesTextReply(t *testing.T) {
	svc := &fakeService{err: &render.RenderError{Op: "encode png", Err: errors.New("boom")}}
	d := newTestDispatcher(svc, false)

	reply := d.Dispatch(context.Background(), Invocation{Command: "status"})
	if reply.Image != nil {
		t.Error("failed request must not return an image")
	}
	if !strings.Contains(reply.Text, "render") {
		t.Errorf("text = %q, want a render failure notice", reply.Text)
	}
}

func TestUnknownCommand(t *testing.T) {
	d := newTestDispatcher(&fakeService{}, false)

	if d.Handles("uptime") {
		t.Error("uptime should not be handled")
	}
	reply := d.Dispatch(context.Background(), Invocation{Command: "uptime"})
	if !strings.Contains(reply.Text, "Unknown command") {
		t.Errorf("text = %q, want unknown-command notice", reply.Text)
	}
}

func TestHandlesKnownCommands(t *testing.T) {
	d := newTestDispatcher(&fakeService{}, false)
	for _, cmd := range []string{"status", "状态", "运行状态", "status_config", "status_clear_cache"} {
		if !d.Handles(cmd) {
			t.Errorf("Handles(%q) = false, want true", cmd)
		}
	}
}
