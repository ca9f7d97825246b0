package simhash

import (
	"testing"
)

var page1 = []string{
	"京ICP证030173号-1", "北京百度网讯科技有限公司", "百度", "baidu.com", "2023-06-01",
	"京ICP备10036305号-7", "北京百度网讯科技有限公司", "百度地图", "map.baidu.com", "2023-05-11",
}

func TestFingerprint_IdenticalPages(t *testing.T) {
	fp1 := Fingerprint(page1)
	fp2 := Fingerprint(append([]string(nil), page1...))

	if fp1 != fp2 {
		t.Errorf("identical pages produced different fingerprints: %064b vs %064b", fp1, fp2)
	}
}

func TestFingerprint_DifferentPages(t *testing.T) {
	page2 := []string{
		"沪ICP备05009767号-2", "上海寻梦信息技术有限公司", "拼多多", "pinduoduo.com", "2022-11-03",
		"粤ICP备2021126888号", "深圳市腾讯计算机系统有限公司", "微信", "weixin.qq.com", "2021-08-19",
	}

	dist := Distance(Fingerprint(page1), Fingerprint(page2))
	if dist < 5 {
		t.Errorf("unrelated pages have too small distance: %d", dist)
	}
}

func TestFingerprint_EmptyInput(t *testing.T) {
	if fp := Fingerprint(nil); fp != 0 {
		t.Errorf("nil input should produce fingerprint 0, got: %064b", fp)
	}
	if fp := Fingerprint([]string{"", ""}); fp != 0 {
		t.Errorf("empty tokens should produce fingerprint 0, got: %064b", fp)
	}
}

func TestFingerprint_SingleToken(t *testing.T) {
	fp := Fingerprint([]string{"baidu.com"})
	if fp == 0 {
		t.Error("single token should produce a non-zero fingerprint")
	}

	fp2 := Fingerprint([]string{"baidu.com"})
	if fp != fp2 {
		t.Errorf("same token produced different fingerprints: %d vs %d", fp, fp2)
	}
}

func TestFingerprint_TokenIsWhole(t *testing.T) {
	whole := Fingerprint([]string{"Baidu Online Network"})
	split := Fingerprint([]string{"Baidu", "Online", "Network"})

	if whole == split {
		t.Error("a multi-word token should not hash like its words")
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
		{"zero zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilar(t *testing.T) {
	fp1 := Fingerprint(page1)
	fp2 := Fingerprint(page1)

	if !Similar(fp1, fp2, 0) {
		t.Error("identical fingerprints should be similar at threshold 0")
	}

	fp3 := Fingerprint([]string{"a", "completely", "different", "page"})
	dist := Distance(fp1, fp3)

	if dist > 0 && Similar(fp1, fp3, dist-1) {
		t.Errorf("different pages should not be similar at threshold %d (distance is %d)", dist-1, dist)
	}
	if !Similar(fp1, fp3, dist) {
		t.Errorf("should be similar at threshold equal to distance (%d)", dist)
	}
}
