package models

// RunStatus is a snapshot of the current search run.
type RunStatus struct {
	RunID          string     `json:"run_id"`
	Keyword        string     `json:"keyword"`
	State          string     `json:"state"` // "idle", "running", "waiting_captcha", "finished", "failed"
	CurrentPage    int        `json:"current_page"`
	MaxPages       int        `json:"max_pages"`
	PagesLoaded    int        `json:"pages_loaded"`
	Records        int        `json:"records"`
	CaptchaPending bool       `json:"captcha_pending"`
	StopReason     StopReason `json:"stop_reason,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// StatusResponse is the response for GET /api/v1/status.
type StatusResponse struct {
	Success bool         `json:"success"`
	Status  RunStatus    `json:"status"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ResumeResponse is the response for POST /api/v1/captcha/resume.
type ResumeResponse struct {
	Success bool         `json:"success"`
	Resumed bool         `json:"resumed"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorResponse is returned by middleware that rejects a request.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
