package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestFilterPolicy_BlocksConfiguredTypes(t *testing.T) {
	policy := NewFilterPolicy([]string{"Image", "Stylesheet", "Font", "Media"}, false, false)

	tests := []struct {
		name    string
		resType proto.NetworkResourceType
		want    bool
	}{
		{"image", proto.NetworkResourceTypeImage, true},
		{"stylesheet", proto.NetworkResourceTypeStylesheet, true},
		{"font", proto.NetworkResourceTypeFont, true},
		{"media", proto.NetworkResourceTypeMedia, true},
		{"document", proto.NetworkResourceTypeDocument, false},
		{"script", proto.NetworkResourceTypeScript, false},
		{"xhr", proto.NetworkResourceTypeXHR, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Block(tt.resType, "https://site.example/res"); got != tt.want {
				t.Errorf("Block(%s) = %v, want %v", tt.resType, got, tt.want)
			}
		})
	}
}

func TestFilterPolicy_BlockScript(t *testing.T) {
	policy := NewFilterPolicy(nil, true, false)

	if !policy.Block(proto.NetworkResourceTypeScript, "https://site.example/app.js") {
		t.Error("script should be blocked when script blocking is on")
	}
	if policy.Block(proto.NetworkResourceTypeDocument, "https://site.example/") {
		t.Error("document must never be blocked")
	}
}

func TestFilterPolicy_TrackerDomains(t *testing.T) {
	policy := NewFilterPolicy(nil, false, true)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"exact tracker", "https://doubleclick.net/ad", true},
		{"tracker subdomain", "https://pagead2.googlesyndication.com/pagead/js", true},
		{"deep subdomain", "https://a.b.google-analytics.com/collect", true},
		{"ordinary site", "https://www.example.com/article", false},
		{"lookalike suffix", "https://notdoubleclick.net/x", false},
		{"unparseable", "://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Block(proto.NetworkResourceTypeScript, tt.url); got != tt.want {
				t.Errorf("Block(Script, %q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestFilterPolicy_TrackersOff(t *testing.T) {
	policy := NewFilterPolicy(nil, false, false)

	if policy.Block(proto.NetworkResourceTypeScript, "https://doubleclick.net/ad") {
		t.Error("tracker should pass when the denylist is off")
	}
}

func TestFilterPolicy_Empty(t *testing.T) {
	if !NewFilterPolicy(nil, false, false).empty() {
		t.Error("policy with nothing to block should be empty")
	}
	if NewFilterPolicy([]string{"Image"}, false, false).empty() {
		t.Error("policy with blocked types is not empty")
	}
	if NewFilterPolicy(nil, false, true).empty() {
		t.Error("policy with tracker blocking is not empty")
	}
	// Unknown names are ignored, leaving nothing to block.
	if !NewFilterPolicy([]string{"Holograms"}, false, false).empty() {
		t.Error("unknown resource type names should be ignored")
	}
}

func TestIsTrackerDomain(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"ad.doubleclick.net", true},
		{"DOUBLECLICK.NET", true},
		{"example.com", false},
		{"net", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isTrackerDomain(tt.host); got != tt.want {
			t.Errorf("isTrackerDomain(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
