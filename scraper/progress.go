package scraper

import (
	"sync"

	"github.com/sonjayce/TianyanchaAutosearch/models"
)

// Progress tracks the current run for the status API. The workflow is the
// only writer; the HTTP gate server reads concurrently.
type Progress struct {
	mu     sync.RWMutex
	status models.RunStatus
}

// NewProgress returns an idle tracker.
func NewProgress() *Progress {
	return &Progress{status: models.RunStatus{State: "idle"}}
}

// Start resets the tracker for a new run.
func (p *Progress) Start(runID, keyword string, maxPages int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = models.RunStatus{
		RunID:    runID,
		Keyword:  keyword,
		State:    "running",
		MaxPages: maxPages,
	}
}

// SetKeyword records the keyword once the operator has entered it.
func (p *Progress) SetKeyword(keyword string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Keyword = keyword
}

// PageStarted marks page n as in progress.
func (p *Progress) PageStarted(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.CurrentPage = n
}

// PageDone adds a loaded page and its record count.
func (p *Progress) PageDone(records int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.PagesLoaded++
	p.status.Records += records
}

// SetCaptchaPending toggles the waiting-for-operator state.
func (p *Progress) SetCaptchaPending(pending bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.CaptchaPending = pending
	switch {
	case pending:
		p.status.State = "waiting_captcha"
	case p.status.State == "waiting_captcha":
		p.status.State = "running"
	}
}

// Finish records the terminal state of the run.
func (p *Progress) Finish(reason models.StopReason, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.CaptchaPending = false
	p.status.StopReason = reason
	if err != nil {
		p.status.State = "failed"
		p.status.Error = err.Error()
		return
	}
	p.status.State = "finished"
}

// Snapshot returns a copy of the current status.
func (p *Progress) Snapshot() models.RunStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
