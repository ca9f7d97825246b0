package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopupCloser_ClicksVisibleMatches(t *testing.T) {
	page := newFakePage()
	visible := &fakeElement{visible: true}
	hidden := &fakeElement{visible: false}
	page.setElements("div.popup-close", visible)
	page.setElements("i.icon-close", hidden)

	c, err := NewPopupCloser([]string{"div.popup-close", "div.mask-layer", "i.icon-close"}, instantPacer())
	require.NoError(t, err)

	closed, err := c.Dismiss(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, 1, visible.forceClicks)
	assert.Equal(t, 0, hidden.forceClicks)
}

func TestPopupCloser_IgnoresFailures(t *testing.T) {
	page := newFakePage()
	broken := &fakeElement{visible: true, failAll: errors.New("detached")}
	ok := &fakeElement{visible: true}
	page.setElements("div.popup-close", broken)
	page.setElements("button.btn-close", ok)

	c, err := NewPopupCloser([]string{"div.popup-close", "button.btn-close"}, instantPacer())
	require.NoError(t, err)

	closed, err := c.Dismiss(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, 1, ok.forceClicks)
}

type stubStrategy struct {
	acted bool
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Dismiss(Page) (bool, error) {
	s.calls++
	return s.acted, s.err
}

func TestPopupCloser_CustomStrategiesRunInOrder(t *testing.T) {
	failing := &stubStrategy{err: errors.New("boom")}
	acting := &stubStrategy{acted: true}

	c, err := NewPopupCloser(nil, instantPacer())
	require.NoError(t, err)
	c.WithStrategies(failing, acting)

	closed, err := c.Dismiss(context.Background(), newFakePage())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, acting.calls)
}

func TestNewPopupCloser_RejectsBadSelector(t *testing.T) {
	_, err := NewPopupCloser([]string{"div.ok", "div[unclosed"}, instantPacer())
	assert.Error(t, err)
}

func TestPopupCloser_ContextCanceled(t *testing.T) {
	page := newFakePage()
	page.setElements("div.popup-close", &fakeElement{visible: true})
	c, err := NewPopupCloser([]string{"div.popup-close"}, instantPacer())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Dismiss(ctx, page)
	assert.ErrorIs(t, err, context.Canceled)
}
