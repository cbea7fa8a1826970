// Package probe performs bounded-time liveness checks against the
// runtime services of the measured project.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Health classifications for a probed service.
const (
	HealthHealthy = "healthy" // TCP open and health endpoint returned 2xx
	HealthRunning = "running" // TCP open but no (or failing) health endpoint
	HealthStopped = "stopped" // TCP connection refused or timed out
	HealthUnknown = "unknown" // probe aborted before completing
)

// Spec identifies one service to probe.
type Spec struct {
	Name       string
	Port       int
	HealthPath string // optional; empty means TCP-only check
}

// ServiceStatus is the transient point-in-time result of one probe.
// It is rebuilt from scratch on every cycle; no history is kept.
type ServiceStatus struct {
	Name    string `json:"name"`
	Port    int    `json:"port"`
	Running bool   `json:"running"`
	Health  string `json:"health"`
}

// probeTimeout bounds both the TCP dial and the HTTP health request.
// A hung target must never stall the rest of the cycle beyond this.
const probeTimeout = 2 * time.Second

// CheckPort probes a single service: a bounded TCP dial to
// localhost:port, then an HTTP GET on the health path if one is
// configured. One attempt per cycle, no retries; the next scheduled
// cycle is the retry.
func CheckPort(ctx context.Context, spec Spec) ServiceStatus {
	status := ServiceStatus{Name: spec.Name, Port: spec.Port, Health: HealthStopped}

	if ctx.Err() != nil {
		status.Health = HealthUnknown
		return status
	}

	addr := fmt.Sprintf("localhost:%d", spec.Port)
	dialer := net.Dialer{Timeout: probeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			status.Health = HealthUnknown
		}
		return status
	}
	_ = conn.Close()

	status.Running = true
	status.Health = HealthRunning

	if spec.HealthPath == "" {
		return status
	}

	if checkHealthEndpoint(ctx, addr, spec.HealthPath) {
		status.Health = HealthHealthy
	}
	return status
}

// checkHealthEndpoint reports whether GET on the health path returns a
// 2xx within the probe timeout. Any other outcome (timeout, non-2xx,
// reset) leaves the service classified as degraded-but-listening.
func checkHealthEndpoint(ctx context.Context, addr, path string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if len(path) == 0 || path[0] != '/' {
		path = "/" + path
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, "http://"+addr+path, nil)
	if err != nil {
		return false
	}

	client := http.Client{Timeout: probeTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// CheckAll probes every service concurrently and returns the results
// keyed by service name. Probes never fail the cycle; a cancelled
// context yields "unknown" statuses for the probes it interrupted.
func CheckAll(ctx context.Context, specs []Spec) map[string]ServiceStatus {
	results := make([]ServiceStatus, len(specs))

	var g errgroup.Group
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			results[i] = CheckPort(ctx, spec)
			return nil
		})
	}
	_ = g.Wait()

	statuses := make(map[string]ServiceStatus, len(specs))
	for _, s := range results {
		statuses[s.Name] = s
	}
	return statuses
}
