package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fogcompute/platform/orchestrator"
)

func testOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		StartTimeout:       50 * time.Millisecond,
		HealthInterval:     time.Hour,
		HealthTimeout:      10 * time.Millisecond,
		FailureThreshold:   3,
		RecoveryThreshold:  2,
		MaxRestartAttempts: 3,
		BackoffBase:        2.0,
		ShutdownTimeout:    50 * time.Millisecond,
	}
}

func newTestOrchestrator(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	o := orchestrator.NewOrchestrator(testOrchestratorConfig())
	err := o.RegisterService(orchestrator.ServiceDescriptor{
		Name:       "alpha",
		IsCritical: true,
		StartFn:    func(context.Context) error { return nil },
		StopFn:     func(context.Context) error { return nil },
	})
	if err != nil {
		t.Fatalf("unexpected error registering service: %v", err)
	}
	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error starting: %v", err)
	}
	t.Cleanup(func() { o.Stop(context.Background()) })
	return o
}

func TestListServicesReturnsRegisteredService(t *testing.T) {
	o := newTestOrchestrator(t)
	srv := httptest.NewServer(NewServer(o, nil))
	defer srv.Close()

	c := NewClient(srv.URL)
	out, err := c.ListServices()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Name != "alpha" {
		t.Fatalf("expected one service named alpha, got %+v", out)
	}
}

func TestGetServiceUnknownNameIsNotFound(t *testing.T) {
	o := newTestOrchestrator(t)
	srv := httptest.NewServer(NewServer(o, nil))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.GetService("does-not-exist"); err == nil {
		t.Fatal("expected an error for an unregistered service name")
	}
}

func TestGetHealthRoundTrips(t *testing.T) {
	o := newTestOrchestrator(t)
	srv := httptest.NewServer(NewServer(o, nil))
	defer srv.Close()

	c := NewClient(srv.URL)
	health, err := c.GetHealth()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health != orchestrator.CompositeHealthy && health != orchestrator.CompositeUnknown {
		t.Fatalf("unexpected composite health %q", health)
	}
}

func TestRestartServiceRoundTrips(t *testing.T) {
	o := newTestOrchestrator(t)
	srv := httptest.NewServer(NewServer(o, nil))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.RestartService("alpha", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRestartServiceRejectsGET(t *testing.T) {
	o := newTestOrchestrator(t)
	srv := httptest.NewServer(NewServer(o, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/restart?name=alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestSubmitUnavailableWithoutCoordinator(t *testing.T) {
	o := newTestOrchestrator(t)
	srv := httptest.NewServer(NewServer(o, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/submit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when no coordinator is wired, got %d", resp.StatusCode)
	}
}
