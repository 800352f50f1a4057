package main

import (
	"testing"

	"github.com/wbell/sonora/internal/config"
	"github.com/wbell/sonora/internal/domain"
)

func TestAssetPlanExcludesLiveURLs(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Assets.Manifest = []string{"https://cdn.example/app.css"}
	cfg.Radios = []domain.RadioStation{
		{
			ID:       "embed",
			Title:    "Embed FM",
			Art:      "https://cdn.example/embed.png",
			EmbedURL: "https://widgets.example/embed-fm/player",
		},
		{
			ID:        "stream",
			Title:     "Stream FM",
			Art:       "https://cdn.example/stream.png",
			StreamURL: "https://live.example/stream-fm",
		},
	}

	manifest, skip := assetPlan(cfg)

	for _, url := range []string{
		"https://widgets.example/embed-fm/player",
		"https://live.example/stream-fm",
	} {
		if !skip(url) {
			t.Errorf("live URL %s must be skip-listed", url)
		}
		for _, m := range manifest {
			if m == url {
				t.Errorf("live URL %s must not be in the prefetch manifest", url)
			}
		}
	}

	want := map[string]bool{
		"https://cdn.example/app.css":    false,
		"https://cdn.example/embed.png":  false,
		"https://cdn.example/stream.png": false,
	}
	for _, m := range manifest {
		if _, ok := want[m]; !ok {
			t.Errorf("unexpected manifest entry %s", m)
			continue
		}
		want[m] = true
	}
	for url, seen := range want {
		if !seen {
			t.Errorf("manifest missing %s", url)
		}
		if skip(url) {
			t.Errorf("cacheable asset %s must not be skip-listed", url)
		}
	}
}
