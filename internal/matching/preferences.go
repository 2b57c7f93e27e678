package matching

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oggyb/muzz-matching/internal/db"
)

var validate = validator.New()

// PreferencePatch carries the fields of an update. Nil fields keep their
// stored value; ClearLocation drops centre and radius.
type PreferencePatch struct {
	Tags                *[]string
	Languages           *[]string
	City                *string
	Country             *string
	CenterLat           *float64
	CenterLng           *float64
	RadiusKm            *float64
	ClearLocation       bool
	Appearance          *map[string][]string
	AutoMessageEnabled  *bool
	AutoMessageTemplate *string
}

// GetPreferences returns the user's stored preferences, empty when none were
// saved.
func (e *Engine) GetPreferences(ctx context.Context, userID uint64) (*db.Preference, error) {
	if userID == 0 {
		return nil, invalid("user id is required")
	}
	ctx, cancel := e.repoCtx(ctx)
	defer cancel()
	if _, err := e.loadActor(ctx, userID); err != nil {
		return nil, err
	}

	p, err := e.prefs.Get(ctx, userID)
	if err != nil {
		return nil, unavailable("load preferences", err)
	}
	return p, nil
}

// UpdatePreferences merges patch into the stored preferences, validates the
// result and saves it.
func (e *Engine) UpdatePreferences(ctx context.Context, userID uint64, patch PreferencePatch) (*db.Preference, error) {
	if userID == 0 {
		return nil, invalid("user id is required")
	}
	ctx, cancel := e.repoCtx(ctx)
	defer cancel()
	if _, err := e.loadActor(ctx, userID); err != nil {
		return nil, err
	}

	p, err := e.prefs.Get(ctx, userID)
	if err != nil {
		return nil, unavailable("load preferences", err)
	}
	patch.apply(p)

	if err := validate.Struct(p); err != nil {
		return nil, invalid("%v", err)
	}
	if (p.CenterLat == nil) != (p.CenterLng == nil) {
		return nil, invalid("center_lat and center_lng must be set together")
	}

	if err := e.prefs.Save(ctx, p); err != nil {
		return nil, unavailable("save preferences", err)
	}
	e.logger(ctx).Info("preferences updated", "user_id", userID)
	return p, nil
}

func (patch PreferencePatch) apply(p *db.Preference) {
	if patch.Tags != nil {
		p.Tags = cleanSet(*patch.Tags)
	}
	if patch.Languages != nil {
		p.Languages = cleanSet(*patch.Languages)
	}
	if patch.City != nil {
		p.City = strings.TrimSpace(*patch.City)
	}
	if patch.Country != nil {
		p.Country = strings.TrimSpace(*patch.Country)
	}
	if patch.ClearLocation {
		p.CenterLat, p.CenterLng, p.RadiusKm = nil, nil, nil
	}
	if patch.CenterLat != nil {
		p.CenterLat = patch.CenterLat
	}
	if patch.CenterLng != nil {
		p.CenterLng = patch.CenterLng
	}
	if patch.RadiusKm != nil {
		p.RadiusKm = patch.RadiusKm
	}
	if patch.Appearance != nil {
		p.Appearance = *patch.Appearance
	}
	if patch.AutoMessageEnabled != nil {
		p.AutoMessageEnabled = *patch.AutoMessageEnabled
	}
	if patch.AutoMessageTemplate != nil {
		p.AutoMessageTemplate = strings.TrimSpace(*patch.AutoMessageTemplate)
	}
}

// cleanSet trims entries and drops blanks and case-insensitive duplicates,
// keeping first occurrences.
func cleanSet(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
