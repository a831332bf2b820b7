package plans

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Package plans loads request plans (YAML/JSON) describing the calls the prober issues.

// Plan is a single request declared in the requests file.
type Plan struct {
	ID             string              `json:"id" yaml:"id"`
	Method         string              `json:"method" yaml:"method"`
	Path           string              `json:"path" yaml:"path"`
	Params         map[string][]string `json:"params" yaml:"params"`
	Headers        map[string]string   `json:"headers" yaml:"headers"`
	JSON           any                 `json:"json" yaml:"json"`
	TimeoutSeconds int                 `json:"timeout_seconds" yaml:"timeout_seconds"`
	Hooks          []string            `json:"hooks" yaml:"hooks"`
	Expect         *Expectation        `json:"expect" yaml:"expect"`
	Enabled        *bool               `json:"enabled" yaml:"enabled"`
}

// Expectation describes what a successful response must look like.
// JSONPaths maps gjson paths to their expected string form.
type Expectation struct {
	Status    int               `json:"status" yaml:"status"`
	JSONPaths map[string]string `json:"json_paths" yaml:"json_paths"`
}

type configFile struct {
	Requests []Plan `json:"requests" yaml:"requests"`
}

// Registry holds the plans loaded from a requests file.
type Registry struct {
	mu    sync.RWMutex
	plans []Plan
	idx   map[string]Plan
}

// LoadRegistry loads request plans from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("requests file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open requests file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}

	parsed, err := parseRequests(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Requests)
}

// NewRegistry sanitizes and validates plans and indexes them by id.
func NewRegistry(plans []Plan) (*Registry, error) {
	if len(plans) == 0 {
		return nil, errors.New("requests file contains no requests entries")
	}

	reg := &Registry{
		plans: make([]Plan, len(plans)),
		idx:   make(map[string]Plan, len(plans)),
	}
	for i := range plans {
		p := sanitizePlan(plans[i])
		if err := validatePlan(p); err != nil {
			return nil, fmt.Errorf("requests[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate request id %q", p.ID)
		}
		reg.plans[i] = p
		reg.idx[p.ID] = p
	}
	return reg, nil
}

func parseRequests(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var parsed configFile
		if err := d.fn(data, &parsed); err == nil {
			return parsed, nil
		}
	}

	return configFile{}, errors.New("requests file format not recognized (expected YAML or JSON)")
}

func sanitizePlan(p Plan) Plan {
	p.ID = strings.TrimSpace(p.ID)
	p.Method = strings.ToUpper(strings.TrimSpace(p.Method))
	if p.Method == "" {
		p.Method = http.MethodGet
	}
	p.Path = strings.TrimSpace(p.Path)

	if len(p.Headers) > 0 {
		headers := make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			if k = strings.TrimSpace(k); k != "" {
				headers[k] = strings.TrimSpace(v)
			}
		}
		p.Headers = headers
	}
	if p.Enabled == nil {
		def := true
		p.Enabled = &def
	}
	return p
}

func validatePlan(p Plan) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative for request %q", p.ID)
	}
	if p.Expect != nil && p.Expect.Status != 0 && (p.Expect.Status < 100 || p.Expect.Status > 599) {
		return fmt.Errorf("expect.status %d out of range for request %q", p.Expect.Status, p.ID)
	}
	return nil
}

// ByID returns the plan with the given id.
func (r *Registry) ByID(id string) (Plan, bool) {
	if r == nil {
		return Plan{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Plan{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// All returns all loaded plans in file order.
func (r *Registry) All() []Plan {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plan, len(r.plans))
	copy(out, r.plans)
	return out
}

// Enabled returns the plans that are enabled.
func (r *Registry) Enabled() []Plan {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Plan, 0, len(all))
	for _, p := range all {
		if p.EnabledValue() {
			out = append(out, p)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (p Plan) EnabledValue() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

// Timeout returns the per-plan timeout, zero meaning the client default.
func (p Plan) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}
