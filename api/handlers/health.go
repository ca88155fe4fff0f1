// ABOUTME: Health endpoint and manual triggers for the scheduled maintenance jobs
// ABOUTME: Reports uptime, feature flags, job schedules and cache storage usage

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bluehand-admin-api/infrastructure/scheduler"
	"bluehand-admin-api/pkg/featureflags"

	"github.com/danielgtaylor/huma/v2"
)

// JobRunner lists the scheduled background jobs and runs one on demand
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	RunNow(ctx context.Context, name string) error
}

// StorageStats is implemented by cache backends that can report their usage
type StorageStats interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// HealthHandler reports liveness and the enabled subsystems
type HealthHandler struct {
	version   string
	flags     featureflags.Manager
	jobs      JobRunner
	storage   StorageStats
	startedAt time.Time
	now       func() time.Time
}

// NewHealthHandler creates a new health handler. jobs and storage may be nil.
func NewHealthHandler(version string, flags featureflags.Manager, jobs JobRunner, storage StorageStats) *HealthHandler {
	if flags == nil {
		flags = featureflags.NewDefaultManager()
	}
	return &HealthHandler{
		version:   version,
		flags:     flags,
		jobs:      jobs,
		storage:   storage,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// RegisterRoutes registers the health and job routes
func (h *HealthHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
		Tags:        []string{"Health"},
	}, h.Health)

	huma.Register(api, huma.Operation{
		OperationID: "run-job",
		Method:      http.MethodPost,
		Path:        "/jobs/{name}/run",
		Summary:     "Run a scheduled job now",
		Tags:        []string{"Health"},
	}, h.RunJob)
}

// HealthOutput is the health report
type HealthOutput struct {
	Body struct {
		Status        string                 `json:"status"`
		Version       string                 `json:"version"`
		UptimeSeconds int64                  `json:"uptimeSeconds"`
		Features      map[string]bool        `json:"features"`
		Jobs          []scheduler.JobInfo    `json:"jobs,omitempty"`
		Storage       map[string]interface{} `json:"storage,omitempty"`
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "ok"
	out.Body.Version = h.version
	out.Body.UptimeSeconds = int64(h.now().Sub(h.startedAt).Seconds())

	flags := h.flags.GetAllFlags()
	out.Body.Features = make(map[string]bool, len(flags))
	for flag, enabled := range flags {
		out.Body.Features[string(flag)] = enabled
	}
	if h.jobs != nil {
		out.Body.Jobs = h.jobs.Jobs()
	}
	if h.storage != nil {
		stats, err := h.storage.Stats(ctx)
		if err != nil {
			out.Body.Status = "degraded"
			stats = map[string]interface{}{"error": err.Error()}
		}
		out.Body.Storage = stats
	}
	return out, nil
}

// RunJobInput names the job to run
type RunJobInput struct {
	Name string `path:"name" doc:"Job name, e.g. cache_sweep or tracking_refresh"`
}

// RunJobOutput reports a manual job run
type RunJobOutput struct {
	Body struct {
		Job        string `json:"job"`
		Success    bool   `json:"success"`
		DurationMs int64  `json:"durationMs"`
		Error      string `json:"error,omitempty"`
	}
}

// RunJob handles POST /jobs/{name}/run. A failing job is reported in the body.
func (h *HealthHandler) RunJob(ctx context.Context, input *RunJobInput) (*RunJobOutput, error) {
	if h.jobs == nil {
		return nil, huma.Error503ServiceUnavailable("scheduled jobs are not configured")
	}

	start := h.now()
	err := h.jobs.RunNow(ctx, input.Name)
	if errors.Is(err, scheduler.ErrUnknownJob) {
		return nil, huma.Error404NotFound("job not found: " + input.Name)
	}

	out := &RunJobOutput{}
	out.Body.Job = input.Name
	out.Body.Success = err == nil
	out.Body.DurationMs = h.now().Sub(start).Milliseconds()
	if err != nil {
		out.Body.Error = err.Error()
	}
	return out, nil
}
