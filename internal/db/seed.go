package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedOptions sizes the demo data set.
type SeedOptions struct {
	Members   int
	Providers int
	// RandSeed makes runs reproducible; zero picks a time-based seed.
	RandSeed int64
}

var (
	seedTags      = []string{"yoga", "hiking", "cooking", "jazz", "chess", "running", "painting", "travel", "tennis", "photography"}
	seedLanguages = []string{"en", "de", "fr", "es", "it", "pt"}
	seedPlaces    = []struct {
		City, Country string
		Lat, Lng      float64
	}{
		{"London", "United Kingdom", 51.5074, -0.1278},
		{"Manchester", "United Kingdom", 53.4808, -2.2426},
		{"Berlin", "Germany", 52.5200, 13.4050},
		{"Paris", "France", 48.8566, 2.3522},
		{"Madrid", "Spain", 40.4168, -3.7038},
	}
	seedHair = []string{"black", "brown", "blonde", "red"}
	seedEyes = []string{"brown", "blue", "green"}
)

// SeedTestData resets the database and populates it with demo users,
// profiles, preferences and decisions.
//
// Behavior:
//  1. Clears every table this service owns.
//  2. Creates members and providers with hashed passwords and random profiles.
//  3. Members get a preference row; every third one enables an auto-message.
//  4. Each member decides on a handful of distinct providers (~70% likes) and every
//     third like is reciprocated so mutual matches exist.
func SeedTestData(db *gorm.DB, opts SeedOptions, log *slog.Logger) error {
	if opts.Members <= 0 {
		opts.Members = 10
	}
	if opts.Providers <= 0 {
		opts.Providers = 10
	}
	if opts.RandSeed == 0 {
		opts.RandSeed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(opts.RandSeed))

	// --- Fresh start ---
	for _, table := range []string{"messages", "notifications", "match_markers", "decision_events", "decisions", "preferences", "profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var members, providers []User
	for i := 1; i <= opts.Members+opts.Providers; i++ {
		role := RoleMember
		if i > opts.Members {
			role = RoleProvider
		}
		lastLogin := time.Now().UTC().Add(-time.Duration(r.Intn(500)) * time.Hour)
		user := User{
			Username:     fmt.Sprintf("%s%d", role, i),
			Email:        fmt.Sprintf("%s%d@example.com", role, i),
			PasswordHash: string(hash),
			Role:         role,
			Active:       true,
			LastLoginAt:  &lastLogin,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		place := seedPlaces[r.Intn(len(seedPlaces))]
		lat := place.Lat + (r.Float64()-0.5)*0.2
		lng := place.Lng + (r.Float64()-0.5)*0.2
		profile := Profile{
			UserID:      user.ID,
			DisplayName: fmt.Sprintf("%s %d", role, i),
			City:        place.City,
			Country:     place.Country,
			Latitude:    &lat,
			Longitude:   &lng,
			Tags:        pick(r, seedTags, 3),
			Languages:   pick(r, seedLanguages, 2),
			Appearance: map[string]string{
				"hair": seedHair[r.Intn(len(seedHair))],
				"eyes": seedEyes[r.Intn(len(seedEyes))],
			},
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}

		if role == RoleMember {
			pref := Preference{
				UserID:    user.ID,
				Tags:      pick(r, seedTags, 2),
				Languages: pick(r, seedLanguages, 1),
				Country:   place.Country,
			}
			if i%3 == 0 {
				pref.AutoMessageEnabled = true
				pref.AutoMessageTemplate = "Hi! Looking forward to working with you."
			}
			if err := db.Create(&pref).Error; err != nil {
				return fmt.Errorf("failed to seed preference: %w", err)
			}
			members = append(members, user)
		} else {
			providers = append(providers, user)
		}
	}
	log.Info("seeded users", "members", len(members), "providers", len(providers))

	// --- Seed Decisions ---
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
	}
	record := func(actor, target uint64, action Action) error {
		if err := db.Clauses(upsert).Create(&Decision{ActorID: actor, TargetID: target, Action: action}).Error; err != nil {
			return err
		}
		return db.Create(&DecisionEvent{ActorID: actor, TargetID: target, Action: action}).Error
	}

	counter, mutual := 0, 0
	for _, m := range members {
		for _, idx := range r.Perm(len(providers))[:len(providers)/2+1] {
			p := providers[idx]

			action := ActionPass
			if r.Intn(100) < 70 {
				action = ActionLike
			}
			if err := record(m.ID, p.ID, action); err != nil {
				return fmt.Errorf("failed to seed decision: %w", err)
			}
			counter++

			// every third like is reciprocated
			if action == ActionLike && counter%3 == 0 {
				if err := record(p.ID, m.ID, ActionLike); err != nil {
					return fmt.Errorf("failed to seed decision: %w", err)
				}
				marker := NewMatchMarker(m.ID, p.ID, time.Now().UTC())
				if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker).Error; err != nil {
					return fmt.Errorf("failed to seed match: %w", err)
				}
				mutual++
			}
		}
	}
	log.Info("seeded decisions", "decisions", counter, "mutual", mutual)

	return nil
}

func pick(r *rand.Rand, from []string, n int) []string {
	idx := r.Perm(len(from))
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, from[i])
	}
	return out
}
