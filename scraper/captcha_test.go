package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sonjayce/TianyanchaAutosearch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptchaGuard_NoCaptchaIsSilent(t *testing.T) {
	g := &fakeGate{}
	guard := NewCaptchaGuard(g, time.Millisecond, nil, nil)

	require.NoError(t, guard.Check(context.Background(), newFakePage()))
	assert.Equal(t, 0, g.count())
}

func TestCaptchaGuard_HiddenCaptchaIgnored(t *testing.T) {
	page := newFakePage()
	page.setElements(SelectorCaptcha, &fakeElement{visible: false})
	g := &fakeGate{}

	require.NoError(t, NewCaptchaGuard(g, time.Millisecond, nil, nil).Check(context.Background(), page))
	assert.Equal(t, 0, g.count())
}

func TestCaptchaGuard_WaitsForOperator(t *testing.T) {
	page := newFakePage()
	page.setElements(SelectorCaptcha, &fakeElement{visible: true})
	progress := NewProgress()
	notifier := &recordingNotifier{}

	var pendingDuringWait bool
	g := &fakeGate{onWait: func() {
		pendingDuringWait = progress.Snapshot().CaptchaPending
		page.setElements(SelectorCaptcha)
	}}

	err := NewCaptchaGuard(g, time.Millisecond, notifier, progress).Check(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 1, g.count())
	assert.True(t, pendingDuringWait)
	assert.False(t, progress.Snapshot().CaptchaPending)
	assert.Equal(t, []string{EventCaptchaDetected}, notifier.list())
}

func TestCaptchaGuard_StillPresentAfterResume(t *testing.T) {
	page := newFakePage()
	page.setElements(SelectorCaptcha, &fakeElement{visible: true})
	g := &fakeGate{}

	err := NewCaptchaGuard(g, time.Millisecond, nil, nil).Check(context.Background(), page)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrCaptchaUnresolved)
	assert.Equal(t, models.ErrCodeCaptchaUnresolved, models.CodeOf(err))
}

func TestCaptchaGuard_GateErrorReturned(t *testing.T) {
	page := newFakePage()
	page.setElements(SelectorCaptcha, &fakeElement{visible: true})
	gateErr := errors.New("stdin closed")

	err := NewCaptchaGuard(&fakeGate{err: gateErr}, time.Millisecond, nil, nil).Check(context.Background(), page)
	assert.ErrorIs(t, err, gateErr)
}
