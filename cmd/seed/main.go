// Command main runs the database seeder for Warbler.
package main

import (
	"flag"
	"log"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/seed"
)

func main() {
	optionsPath := flag.String("options", "seed.yml", "Path to seeder options file")
	numUsers := flag.Int("users", 0, "Number of users to create (overrides options file)")
	numWarbles := flag.Int("warbles", 0, "Number of warbles to create (overrides options file)")
	flag.Parse()

	opts, err := seed.LoadOptions(*optionsPath)
	if err != nil {
		log.Fatalf("Failed to load seeder options: %v", err)
	}
	if *numUsers > 0 {
		opts.NumUsers = *numUsers
	}
	if *numWarbles > 0 {
		opts.NumWarbles = *numWarbles
	}

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d warbles, clean=%v", opts.NumUsers, opts.NumWarbles, opts.ShouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, opts)
	if err := s.Run(opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! The database is populated with demo data.")
	log.Printf("All demo accounts use the password: %s", seed.SeedPassword)
}
