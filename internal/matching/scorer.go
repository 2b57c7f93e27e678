package matching

import (
	"math"
	"strings"

	"github.com/oggyb/muzz-matching/internal/config"
	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/geo"
)

// Scorer computes the additive affinity between a seeker's preferences and a
// candidate profile. It is pure: the same inputs always give the same score.
type Scorer struct {
	w config.WeightsConfig
}

func NewScorer(w config.WeightsConfig) Scorer {
	return Scorer{w: w}
}

// Breakdown is the per-term contribution to a score.
type Breakdown struct {
	Tags       float64
	Languages  float64
	Appearance float64
	City       float64
	Country    float64
	Distance   float64
}

func (b Breakdown) Total() float64 {
	return b.Tags + b.Languages + b.Appearance + b.City + b.Country + b.Distance
}

// Score returns a value >= 0; higher is better.
func (s Scorer) Score(p *db.Preference, c *db.Profile) float64 {
	return s.Explain(p, c).Total()
}

// Explain scores term by term.
func (s Scorer) Explain(p *db.Preference, c *db.Profile) Breakdown {
	var b Breakdown
	if p == nil {
		return b
	}
	if c == nil {
		c = &db.Profile{}
	}

	b.Tags = s.w.Tag * float64(overlap(p.Tags, c.Tags))
	b.Languages = s.w.Language * float64(overlap(p.Languages, c.Languages))
	b.Appearance = s.w.Appearance * float64(appearanceMatches(p.Appearance, c.Appearance))

	if p.City != "" && containsFold(c.City, p.City) {
		b.City = s.w.City
	}
	if p.Country != "" && containsFold(c.Country, p.Country) {
		b.Country = s.w.Country
	}

	if p.RadiusFilter() && c.HasLocation() {
		d := geo.DistanceKm(
			geo.Point{Lat: *p.CenterLat, Lng: *p.CenterLng},
			geo.Point{Lat: *c.Latitude, Lng: *c.Longitude},
		)
		b.Distance = distanceBonus(d, *p.RadiusKm, s.w.DistanceMax)
	}
	return b
}

// distanceBonus decays linearly from max at the centre to 0 at the radius.
// The radius is floored at 1 km.
func distanceBonus(distanceKm, radiusKm, max float64) float64 {
	r := math.Max(1, radiusKm)
	return math.Max(0, max-(distanceKm/r)*max)
}

// overlap counts distinct wanted values present in offered, ignoring case and
// surrounding whitespace.
func overlap(wanted, offered []string) int {
	if len(wanted) == 0 || len(offered) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(offered))
	for _, o := range offered {
		have[norm(o)] = struct{}{}
	}
	seen := make(map[string]struct{}, len(wanted))
	n := 0
	for _, w := range wanted {
		k := norm(w)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := have[k]; ok {
			n++
		}
	}
	return n
}

// appearanceMatches counts wanted attributes whose candidate value is one of
// the accepted values.
func appearanceMatches(wanted map[string][]string, offered map[string]string) int {
	if len(wanted) == 0 || len(offered) == 0 {
		return 0
	}
	have := make(map[string]string, len(offered))
	for k, v := range offered {
		have[norm(k)] = norm(v)
	}
	n := 0
	for k, accepted := range wanted {
		v, ok := have[norm(k)]
		if !ok || v == "" {
			continue
		}
		for _, a := range accepted {
			if norm(a) == v {
				n++
				break
			}
		}
	}
	return n
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
