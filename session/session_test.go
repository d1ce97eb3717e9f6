package session

import (
	"testing"
	"time"

	"github.com/linkpeel/linkpeel/config"
	"github.com/linkpeel/linkpeel/models"
	"github.com/linkpeel/linkpeel/resolver"
)

func testOrchestrator() *Orchestrator {
	r := resolver.New(config.ResolverConfig{
		PrimaryTimeout:   time.Minute,
		SecondaryTimeout: 30 * time.Second,
		HubPatterns:      config.DefaultHubPatterns,
	})
	return NewOrchestrator(nil, r, nil, nil, config.BrowserConfig{})
}

func TestWantsHTTP(t *testing.T) {
	o := testOrchestrator()

	tests := []struct {
		name string
		mode string
		url  string
		want bool
	}{
		{"http forced", models.FetchModeHTTP, "https://news.google.com/articles/x", true},
		{"browser forced", models.FetchModeBrowser, "https://www.example.com/story", false},
		{"auto plain url", models.FetchModeAuto, "https://www.example.com/story", true},
		{"auto hub url", models.FetchModeAuto, "https://news.google.com/articles/x", false},
		{"unknown mode", "teleport", "https://www.example.com/story", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.wantsHTTP(tt.mode, tt.url); got != tt.want {
				t.Errorf("wantsHTTP(%q, %q) = %v, want %v", tt.mode, tt.url, got, tt.want)
			}
		})
	}
}

func TestSeconds_Rounding(t *testing.T) {
	start := time.Now().Add(-1234 * time.Millisecond)
	got := seconds(start)
	if got < 1.23 || got > 1.25 {
		t.Errorf("seconds = %v, want about 1.23", got)
	}
}
