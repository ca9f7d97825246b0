package fofa

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sonjayce/TianyanchaAutosearch/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ChineseHeaderSkipsEmpty(t *testing.T) {
	in := "\xEF\xBB\xBF备案号,主办单位,网站名称,网站域名,审核时间\n" +
		"A-1,op,site,a.com,2023-01-01\n" +
		"B-1,op,site,,2023-01-02\n" +
		"C-1,op,site,b.com,2023-01-03\n"

	expr, stats, err := Build(strings.NewReader(in), nil)
	require.NoError(t, err)
	assert.Equal(t, `domain="a.com"||domain="b.com"`, expr)
	assert.Equal(t, Stats{Rows: 3, Domains: 2}, stats)
}

func TestBuild_EnglishHeader(t *testing.T) {
	in := "id,domain\n1, x.org \n2,y.org\n"

	expr, _, err := Build(strings.NewReader(in), nil)
	require.NoError(t, err)
	assert.Equal(t, `domain="x.org"||domain="y.org"`, expr)
}

func TestBuild_HeaderNotFound(t *testing.T) {
	_, _, err := Build(strings.NewReader("host,ip\na.com,1.1.1.1\n"), nil)
	assert.ErrorIs(t, err, models.ErrHeaderNotFound)

	_, _, err = Build(strings.NewReader(""), nil)
	assert.ErrorIs(t, err, models.ErrHeaderNotFound)
}

func TestBuild_NoDomains(t *testing.T) {
	_, stats, err := Build(strings.NewReader("网站域名\n\n \n"), nil)
	assert.ErrorIs(t, err, models.ErrNoDomains)
	assert.Equal(t, 0, stats.Domains)
	assert.True(t, IsInputError(err))
}

func TestBuild_ShortRowSkipped(t *testing.T) {
	expr, _, err := Build(strings.NewReader("a,b,domain\n1,2\n1,2,c.com\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, `domain="c.com"`, expr)
}

func TestBuild_ReportsProgress(t *testing.T) {
	var calls [][2]int
	_, _, err := Build(strings.NewReader("domain\na\nb\n"), func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
}

func TestConvert_Idempotent(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "result.csv")
	out := filepath.Join(dir, "fofa.txt")
	require.NoError(t, os.WriteFile(in, []byte("网站域名\na.com\n\nb.com\n"), 0o644))

	_, err := Convert(in, out, nil)
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, err = Convert(in, out, nil)
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, `domain="a.com"||domain="b.com"`, string(first))
	assert.True(t, bytes.Equal(first, second))
}

func TestConvert_NoOutputOnError(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "result.csv")
	out := filepath.Join(dir, "fofa.txt")
	require.NoError(t, os.WriteFile(in, []byte("host\na.com\n"), 0o644))

	_, err := Convert(in, out, nil)
	assert.ErrorIs(t, err, models.ErrHeaderNotFound)

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestConvert_MissingInput(t *testing.T) {
	_, err := Convert(filepath.Join(t.TempDir(), "nope.csv"), "fofa.txt", nil)
	require.Error(t, err)
	assert.False(t, IsInputError(err))
}

func TestBar_Render(t *testing.T) {
	b := &Bar{width: 10}
	assert.Equal(t, "[█████-----] 50.0%", b.Render(1, 2))
	assert.Equal(t, "[██████████] 100.0%", b.Render(5, 5))
	assert.Equal(t, "[----------] 0.0%", b.Render(0, 0))

	var buf bytes.Buffer
	b = NewBar(&buf, -1, "进度：")
	b.Update(1, 1)
	b.Done()
	assert.True(t, strings.HasPrefix(buf.String(), "\r进度：["))
	assert.True(t, strings.HasSuffix(buf.String(), "100.0%\n"))
}
