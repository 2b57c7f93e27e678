package matching

import (
	"sort"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/geo"
)

// Suggestion is a ranked candidate as shown to the seeker. The raw score is
// deliberately absent.
type Suggestion struct {
	UserID      uint64
	DisplayName string
	City        string
	Country     string
	Tags        []string
	Languages   []string
	Appearance  map[string]string
	DistanceKm  *float64
}

type scored struct {
	user       db.User
	score      float64
	distanceKm *float64
}

// rank applies the radius cutoff, scores what remains and orders by score
// descending, then by user id ascending.
func rank(scorer Scorer, prefs *db.Preference, users []db.User) []scored {
	hasCenter := prefs.CenterLat != nil && prefs.CenterLng != nil
	radius := prefs.RadiusFilter()

	out := make([]scored, 0, len(users))
	for _, u := range users {
		var dist *float64
		if hasCenter && u.Profile.HasLocation() {
			d := geo.DistanceKm(
				geo.Point{Lat: *prefs.CenterLat, Lng: *prefs.CenterLng},
				geo.Point{Lat: *u.Profile.Latitude, Lng: *u.Profile.Longitude},
			)
			dist = &d
		}

		// unknown location cannot be shown to be inside the radius
		if radius && (dist == nil || *dist > *prefs.RadiusKm) {
			continue
		}

		out = append(out, scored{
			user:       u,
			score:      scorer.Score(prefs, u.Profile),
			distanceKm: dist,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].user.ID < out[j].user.ID
	})
	return out
}

func toSuggestion(s scored) Suggestion {
	sg := Suggestion{
		UserID:      s.user.ID,
		DisplayName: s.user.Username,
		DistanceKm:  s.distanceKm,
	}
	if p := s.user.Profile; p != nil {
		if p.DisplayName != "" {
			sg.DisplayName = p.DisplayName
		}
		sg.City = p.City
		sg.Country = p.Country
		sg.Tags = p.Tags
		sg.Languages = p.Languages
		sg.Appearance = p.Appearance
	}
	return sg
}
