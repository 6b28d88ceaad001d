package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fogcompute/platform/orchestrator"
	"github.com/fogcompute/platform/placement"
)

// Client is a thin JSON-over-HTTP client for a Server, used by fogctl.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client pointed at baseURL (e.g. "http://127.0.0.1:9738").
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

func (c *Client) get(path string, query url.Values, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	resp, err := c.HTTP.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func (c *Client) post(path string, query url.Values, body interface{}, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = *bytes.NewReader(buf)
	}
	resp, err := c.HTTP.Post(u, "application/json", &reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("httpapi: %s", apiErr.Error)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListServices fetches every registered service's info.
func (c *Client) ListServices() ([]orchestrator.ServiceInfo, error) {
	var out []orchestrator.ServiceInfo
	err := c.get("/services", nil, &out)
	return out, err
}

// GetService fetches a single service's info.
func (c *Client) GetService(name string) (orchestrator.ServiceInfo, error) {
	var out orchestrator.ServiceInfo
	err := c.get("/service", url.Values{"name": {name}}, &out)
	return out, err
}

// GetHealth fetches the composite health verdict.
func (c *Client) GetHealth() (orchestrator.CompositeHealth, error) {
	var out struct {
		Health orchestrator.CompositeHealth `json:"health"`
	}
	err := c.get("/health", nil, &out)
	return out.Health, err
}

// GetDependencies fetches the registered dependency edges for name.
func (c *Client) GetDependencies(name string) ([]orchestrator.Dependency, error) {
	var out []orchestrator.Dependency
	err := c.get("/dependencies", url.Values{"name": {name}}, &out)
	return out, err
}

// GetMetrics fetches the per-service uptime-ratio map.
func (c *Client) GetMetrics() (map[string]float64, error) {
	var out map[string]float64
	err := c.get("/metrics.json", nil, &out)
	return out, err
}

// RestartService requests a restart of name, optionally resetting its
// backoff attempt counter.
func (c *Client) RestartService(name string, force bool) error {
	q := url.Values{"name": {name}}
	if force {
		q.Set("force", "true")
	}
	return c.post("/restart", q, nil, nil)
}

// ForceHealthCheck requests an immediate, out-of-band health check of name.
func (c *Client) ForceHealthCheck(name string) error {
	return c.post("/force-health-check", url.Values{"name": {name}}, nil, nil)
}

// SubmitTask submits a placement job to the coordinator's scheduler.
func (c *Client) SubmitTask(job placement.Job) error {
	return c.post("/submit", nil, job, nil)
}
