package nowplaying

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dckiller51/trueachievements/internal/logging"
	"github.com/dckiller51/trueachievements/internal/services"
	"github.com/dckiller51/trueachievements/internal/services/homeassistant"
)

// Playing describes the externally reported current game.
type Playing struct {
	// Name is the game name exactly as the now-playing source reports it.
	Name string
	// Lookup is Name after the configured rename table, matching the export
	// file's naming of the title.
	Lookup string
	// Image is the entity_picture reference of the sibling image entity,
	// empty when the source offers none.
	Image string
}

// StateSource is the slice of the Home Assistant client the resolver needs.
type StateSource interface {
	EntityState(ctx context.Context, entityID string) (*homeassistant.EntityState, error)
}

// States the source reports when nothing is being played.
var idleStates = map[string]struct{}{
	"unavailable": {},
	"unknown":     {},
	"idle":        {},
}

// Resolver reads the current game from a single configured state entity.
type Resolver struct {
	source StateSource
	logger *slog.Logger
}

// NewResolver builds a resolver over the given state source.
func NewResolver(logger *slog.Logger, source StateSource) *Resolver {
	return &Resolver{
		source: source,
		logger: logging.NewComponentLogger(logger, "nowplaying"),
	}
}

// Current resolves the reported game for entityID, nil when nothing is
// playing. A missing entity is treated as "not playing"; other source errors
// are returned so the caller can decide whether the cycle proceeds without
// now-playing data.
func (r *Resolver) Current(ctx context.Context, entityID string, renames map[string]string) (*Playing, error) {
	if r == nil || r.source == nil {
		return nil, nil
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, nil
	}

	state, err := r.source.EntityState(ctx, entityID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			r.logger.Debug("now-playing entity missing",
				logging.String(logging.FieldEntity, entityID),
			)
			return nil, nil
		}
		return nil, err
	}
	if state == nil {
		return nil, nil
	}
	name := strings.TrimSpace(state.State)
	if name == "" {
		return nil, nil
	}
	if _, idle := idleStates[strings.ToLower(name)]; idle {
		return nil, nil
	}

	playing := &Playing{Name: name, Lookup: name}
	if mapped, ok := renames[name]; ok {
		playing.Lookup = mapped
	}
	playing.Image = r.siblingImage(ctx, entityID)
	return playing, nil
}

// siblingImage queries the image entity counterpart of the state sensor.
// Failures here are never fatal; the detail simply ships without artwork.
func (r *Resolver) siblingImage(ctx context.Context, entityID string) string {
	imageID := strings.Replace(entityID, "sensor.", "image.", 1)
	if imageID == entityID {
		return ""
	}
	state, err := r.source.EntityState(ctx, imageID)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			r.logger.Debug("image entity lookup failed",
				logging.String(logging.FieldEntity, imageID),
				logging.Error(err),
			)
		}
		return ""
	}
	return state.AttributeString("entity_picture")
}
