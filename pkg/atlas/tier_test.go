package atlas

import (
	"reflect"
	"testing"
)

func TestSelectTierByScore(t *testing.T) {
	tiers := DefaultTiers()

	tests := []struct {
		score float64
		want  string
	}{
		{0, "low"},
		{0.2, "low"},
		{0.5, "medium"},
		{0.8, "high"},
		{1, "high"},
	}
	for _, tt := range tests {
		got, fellBack := SelectTier(tiers, tt.score, "_MainTex")
		if got.Name != tt.want {
			t.Errorf("SelectTier(%v) = %q, want %q", tt.score, got.Name, tt.want)
		}
		if fellBack {
			t.Errorf("SelectTier(%v) fell back unexpectedly", tt.score)
		}
	}
}

func TestSelectTierMonotonicSize(t *testing.T) {
	tiers := DefaultTiers()
	prev := 0
	for score := 0.0; score <= 1.0; score += 0.05 {
		tier, _ := SelectTier(tiers, score, "_MainTex")
		if tier.MaxSize < prev {
			t.Fatalf("size decreased at score %v: %d < %d", score, tier.MaxSize, prev)
		}
		prev = tier.MaxSize
	}
}

func TestSelectTierFallbackToMiddle(t *testing.T) {
	// Gap between 0.3 and 0.7 falls through to the middle enabled tier.
	tiers := []Tier{
		{Name: "a", Enabled: true, MinComplexity: 0, MaxComplexity: 0.3, MaxSize: 256, Quality: 50},
		{Name: "b", Enabled: true, MinComplexity: 0.7, MaxComplexity: 0.9, MaxSize: 1024, Quality: 75},
		{Name: "c", Enabled: true, MinComplexity: 0.9, MaxComplexity: 1, MaxSize: 2048, Quality: 100},
	}
	got, fellBack := SelectTier(tiers, 0.5, "_MainTex")
	if !fellBack {
		t.Error("expected fallback for uncovered score")
	}
	if got.Name != "b" {
		t.Errorf("fallback tier = %q, want middle tier b", got.Name)
	}
}

func TestSelectTierSkipsDisabled(t *testing.T) {
	tiers := []Tier{
		{Name: "off", Enabled: false, MinComplexity: 0, MaxComplexity: 1, MaxSize: 128, Quality: 10},
		{Name: "on", Enabled: true, MinComplexity: 0, MaxComplexity: 1, MaxSize: 1024, Quality: 80},
	}
	got, _ := SelectTier(tiers, 0.4, "x")
	if got.Name != "on" {
		t.Errorf("selected disabled tier %q", got.Name)
	}
}

func TestSelectTierAllDisabled(t *testing.T) {
	tiers := []Tier{
		{Name: "a", Enabled: false, MinComplexity: 0, MaxComplexity: 0.5, MaxSize: 256, Quality: 50},
		{Name: "b", Enabled: false, MinComplexity: 0.5, MaxComplexity: 1, MaxSize: 1024, Quality: 75},
	}
	got, fellBack := SelectTier(tiers, 0.4, "_MainTex")
	if !fellBack {
		t.Error("expected fallback with no enabled tiers")
	}
	if !reflect.DeepEqual(got, Tier{}) {
		t.Errorf("SelectTier with no enabled tiers = %+v, want zero tier", got)
	}
}

func TestSelectTierNameFilters(t *testing.T) {
	tiers := []Tier{
		{Name: "masks", Enabled: true, MinComplexity: 0, MaxComplexity: 1, MaxSize: 256, Quality: 40,
			Include: []string{"*Mask*"}},
		{Name: "rest", Enabled: true, MinComplexity: 0, MaxComplexity: 1, MaxSize: 1024, Quality: 80,
			Exclude: []string{"*Mask*"}},
	}

	got, _ := SelectTier(tiers, 0.5, "_ShadowMask")
	if got.Name != "masks" {
		t.Errorf("mask property got tier %q, want masks", got.Name)
	}
	got, _ = SelectTier(tiers, 0.5, "_MainTex")
	if got.Name != "rest" {
		t.Errorf("non-mask property got tier %q, want rest", got.Name)
	}
}

func TestSettingsNeverUpscale(t *testing.T) {
	tier := Tier{Name: "high", MaxSize: 2048, Quality: 90}
	s := tier.settingsFor("_MainTex", 300, nil, nil)
	if s.MaxSize != 256 {
		t.Errorf("MaxSize = %d, want 256 (power-of-two floor of native 300)", s.MaxSize)
	}

	s = tier.settingsFor("_MainTex", 4096, nil, nil)
	if s.MaxSize != 2048 {
		t.Errorf("MaxSize = %d, want tier limit 2048", s.MaxSize)
	}
}

func TestSettingsOverrides(t *testing.T) {
	tier := Tier{Name: "med", MaxSize: 1024, Quality: 75}
	sizeOv := map[string]int{"_MainTex": 512}
	qualOv := map[string]int{"_MainTex": 90}
	s := tier.settingsFor("_MainTex", 2048, sizeOv, qualOv)
	if s.MaxSize != 512 {
		t.Errorf("MaxSize = %d, want override 512", s.MaxSize)
	}
	if s.Quality != 90 {
		t.Errorf("Quality = %d, want override 90", s.Quality)
	}
}

func TestParseOverrides(t *testing.T) {
	got, err := ParseOverrides("_MainTex:512, _BumpMap:1024")
	if err != nil {
		t.Fatalf("ParseOverrides failed: %v", err)
	}
	if got["_MainTex"] != 512 || got["_BumpMap"] != 1024 {
		t.Errorf("ParseOverrides = %v", got)
	}

	if _, err := ParseOverrides("bad"); err == nil {
		t.Error("expected error for missing colon")
	}
	if _, err := ParseOverrides("x:notanumber"); err == nil {
		t.Error("expected error for non-numeric value")
	}
	empty, err := ParseOverrides("  ")
	if err != nil || len(empty) != 0 {
		t.Errorf("blank input: got %v, %v", empty, err)
	}
}
