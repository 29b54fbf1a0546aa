package daemonrun

import (
	"context"
	"sync"
	"testing"

	"github.com/dckiller51/trueachievements/internal/config"
	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/nowplaying"
	"github.com/dckiller51/trueachievements/internal/services"
	"github.com/dckiller51/trueachievements/internal/services/homeassistant"
)

type recordingSource struct {
	mu       sync.Mutex
	entities []string
}

func (r *recordingSource) EntityState(_ context.Context, entityID string) (*homeassistant.EntityState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append(r.entities, entityID)
	return nil, services.ErrNotFound
}

func TestNowPlayingCurrentFollowsConfigEdits(t *testing.T) {
	cfg := config.Default()
	cfg.NowPlaying.Entity = "sensor.xbox_one"

	var mu sync.Mutex
	provider := func() (*config.Config, error) {
		mu.Lock()
		defer mu.Unlock()
		snapshot := cfg
		return &snapshot, nil
	}

	source := &recordingSource{}
	resolver := nowplaying.NewResolver(logging.NewNop(), source)
	current := nowPlayingCurrent(provider, resolver)

	if _, err := current(context.Background()); err != nil {
		t.Fatalf("first poll: %v", err)
	}

	mu.Lock()
	cfg.NowPlaying.Entity = "sensor.xbox_series_x"
	mu.Unlock()

	if _, err := current(context.Background()); err != nil {
		t.Fatalf("second poll: %v", err)
	}

	source.mu.Lock()
	defer source.mu.Unlock()
	if len(source.entities) != 2 {
		t.Fatalf("expected two entity lookups, got %v", source.entities)
	}
	if source.entities[0] != "sensor.xbox_one" || source.entities[1] != "sensor.xbox_series_x" {
		t.Fatalf("watcher did not pick up the entity change: %v", source.entities)
	}
}
