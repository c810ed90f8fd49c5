// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"warbler/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Options controls what the seeder generates.
type Options struct {
	NumUsers    int  `yaml:"users"`
	NumWarbles  int  `yaml:"warbles"`
	ShouldClean bool `yaml:"clean"`
	SkipBcrypt  bool `yaml:"skip_bcrypt"`
}

// DefaultOptions is the baseline demo dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:    50,
		NumWarbles:  200,
		ShouldClean: true,
	}
}

// LoadOptions reads seeder options from a YAML file. A missing file yields
// the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, err
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("parse %s: %w", path, err)
	}
	return opts, nil
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes all seeded data. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []any{
		&models.Like{}, &models.Follow{}, &models.Message{}, &models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates n accounts.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))
	return users, nil
}

// SeedWarbles spreads n warbles across the given users.
func (s *Seeder) SeedWarbles(users []*models.User, n int) ([]*models.Message, error) {
	if len(users) == 0 {
		return nil, nil
	}
	warbles := make([]*models.Message, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		w, err := s.factory.CreateMessage(author)
		if err != nil {
			return nil, fmt.Errorf("create warble %d: %w", i, err)
		}
		warbles = append(warbles, w)
	}
	log.Printf("Created %d warbles", len(warbles))
	return warbles, nil
}

// SeedSocialGraph wires random follow edges and likes over the users and
// warbles. Each user follows a handful of others and likes a handful of
// warbles.
func (s *Seeder) SeedSocialGraph(users []*models.User, warbles []*models.Message) error {
	follows, likes := 0, 0
	for _, u := range users {
		for i := 0; i < rand.Intn(8); i++ {
			target := users[rand.Intn(len(users))]
			if target.ID == u.ID {
				continue
			}
			if err := s.factory.CreateFollow(u, target); err != nil {
				return err
			}
			follows++
		}
		for i := 0; i < rand.Intn(12) && len(warbles) > 0; i++ {
			w := warbles[rand.Intn(len(warbles))]
			if err := s.factory.CreateLike(u, w); err != nil {
				return err
			}
			likes++
		}
	}
	log.Printf("Created %d follows and %d likes", follows, likes)
	return nil
}

// Run executes the full seeding pass.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	warbles, err := s.SeedWarbles(users, opts.NumWarbles)
	if err != nil {
		return err
	}
	return s.SeedSocialGraph(users, warbles)
}
