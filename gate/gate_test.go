package gate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sonjayce/TianyanchaAutosearch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleWait_ReturnsOnEnter(t *testing.T) {
	var out bytes.Buffer
	g := NewConsole(strings.NewReader("\n"), &out)

	require.NoError(t, g.Wait(context.Background(), "captcha detected"))
	assert.Contains(t, out.String(), "captcha detected")
	assert.Contains(t, out.String(), "press Enter")
}

func TestConsoleWait_EOF(t *testing.T) {
	g := NewConsole(strings.NewReader(""), io.Discard)

	err := g.Wait(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
}

func TestConsoleWait_ContextCanceled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	g := NewConsole(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := g.Wait(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConsolePair_SharesInput(t *testing.T) {
	g, p := NewConsolePair(strings.NewReader("  百度  \n\n"), io.Discard)

	kw, err := p.Keyword(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "百度", kw)

	require.NoError(t, g.Wait(context.Background(), "captcha"))
}

func TestConsolePrompter_EmptyKeyword(t *testing.T) {
	_, p := NewConsolePair(strings.NewReader("   \n"), io.Discard)

	_, err := p.Keyword(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeInvalidInput, models.CodeOf(err))
}

func TestFixed(t *testing.T) {
	kw, err := Fixed(" tianyancha ").Keyword(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tianyancha", kw)

	_, err = Fixed("").Keyword(context.Background())
	assert.Equal(t, models.ErrCodeInvalidInput, models.CodeOf(err))
}

func TestRemote_ResumeReleasesWait(t *testing.T) {
	r := NewRemote()
	done := make(chan error, 1)
	go func() { done <- r.Wait(context.Background(), "captcha") }()

	require.Eventually(t, func() bool {
		pending, _ := r.Pending()
		return pending
	}, time.Second, 5*time.Millisecond)

	_, reason := r.Pending()
	assert.Equal(t, "captcha", reason)
	require.NoError(t, r.Resume())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Resume")
	}

	pending, _ := r.Pending()
	assert.False(t, pending)
}

func TestRemote_ResumeWithoutWaiter(t *testing.T) {
	r := NewRemote()
	assert.True(t, errors.Is(r.Resume(), ErrNotWaiting))
}

func TestRemote_ContextCanceled(t *testing.T) {
	r := NewRemote()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Wait(ctx, "captcha")
	assert.ErrorIs(t, err, context.Canceled)

	pending, _ := r.Pending()
	assert.False(t, pending)
}
