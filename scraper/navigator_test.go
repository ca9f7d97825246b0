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

func TestBuildSearchURL(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		target models.SearchTarget
		want   string
	}{
		{"ascii", "https://beian.tianyancha.com", models.SearchTarget{Keyword: "baidu", Page: 1}, "https://beian.tianyancha.com/search/baidu/p1"},
		{"chinese", "https://beian.tianyancha.com", models.SearchTarget{Keyword: "百度", Page: 2}, "https://beian.tianyancha.com/search/%E7%99%BE%E5%BA%A6/p2"},
		{"trailing slash", "https://beian.tianyancha.com/", models.SearchTarget{Keyword: "a b", Page: 10}, "https://beian.tianyancha.com/search/a%20b/p10"},
		{"slash in keyword", "http://localhost", models.SearchTarget{Keyword: "a/b", Page: 3}, "http://localhost/search/a%2Fb/p3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSearchURL(tt.base, tt.target))
		})
	}
}

func newTestNavigator(page Page, g *fakeGate) *Navigator {
	popups, _ := NewPopupCloser([]string{"div.popup-close"}, instantPacer())
	captcha := NewCaptchaGuard(g, time.Millisecond, nil, nil)
	return NewNavigator(page, popups, captcha, time.Millisecond, nil)
}

func TestLoadPage_ReadyOnTable(t *testing.T) {
	page := newFakePage()
	popup := &fakeElement{visible: true}
	page.onNavigate = func(p *fakePage, _ string) {
		p.set(SelectorResultsTable, true)
		p.setElements("div.popup-close", popup)
	}

	err := newTestNavigator(page, &fakeGate{}).LoadPage(context.Background(), "https://x/search/a/p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/search/a/p1"}, page.visits)
	assert.Equal(t, 1, popup.forceClicks, "popups are dismissed after load")
}

func TestLoadPage_ReadyOnNoData(t *testing.T) {
	page := newFakePage()
	page.onNavigate = func(p *fakePage, _ string) { p.set(SelectorNoData, true) }

	assert.NoError(t, newTestNavigator(page, &fakeGate{}).LoadPage(context.Background(), "u"))
}

func TestLoadPage_Timeout(t *testing.T) {
	page := newFakePage()

	err := newTestNavigator(page, &fakeGate{}).LoadPage(context.Background(), "https://x/search/a/p4")
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeTimeout, models.CodeOf(err))
	assert.Contains(t, err.Error(), "https://x/search/a/p4")
	assert.Equal(t, 1, page.visitCount(), "a timed out load is not retried")
}

func TestLoadPage_NavigationError(t *testing.T) {
	page := newFakePage()
	page.navErr = errors.New("net::ERR_CONNECTION_RESET")

	err := newTestNavigator(page, &fakeGate{}).LoadPage(context.Background(), "u")
	assert.Equal(t, models.ErrCodeNavigation, models.CodeOf(err))
}

func TestLoadPage_UnresolvedCaptchaTolerated(t *testing.T) {
	page := newFakePage()
	page.onNavigate = func(p *fakePage, _ string) {
		p.set(SelectorResultsTable, true)
		p.setElements(SelectorCaptcha, &fakeElement{visible: true})
	}
	g := &fakeGate{}

	require.NoError(t, newTestNavigator(page, g).LoadPage(context.Background(), "u"))
	assert.Equal(t, 1, g.count())
}

func TestLoadPage_GateErrorFailsLoad(t *testing.T) {
	page := newFakePage()
	page.onNavigate = func(p *fakePage, _ string) {
		p.set(SelectorResultsTable, true)
		p.setElements(SelectorCaptcha, &fakeElement{visible: true})
	}
	gateErr := errors.New("stdin closed")

	err := newTestNavigator(page, &fakeGate{err: gateErr}).LoadPage(context.Background(), "u")
	assert.ErrorIs(t, err, gateErr)
}

func TestNewLoadLimiter(t *testing.T) {
	assert.Nil(t, NewLoadLimiter(0))

	l := NewLoadLimiter(60)
	require.NotNil(t, l)
	assert.True(t, l.Allow(), "first load is never throttled")
	assert.False(t, l.Allow())
}
