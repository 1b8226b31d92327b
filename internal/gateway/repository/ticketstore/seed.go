package ticketstore

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"supportflow/internal/types"
)

// Seed is the fixture format shared by the memory store, the Postgres
// loader and the knowledge-base indexer.
type Seed struct {
	Callers      []types.Caller        `yaml:"callers"`
	Events       []types.Event         `yaml:"events"`
	Reservations []types.Reservation   `yaml:"reservations"`
	Tickets      []types.SupportTicket `yaml:"tickets"`
	Articles     []types.KBArticle     `yaml:"articles"`
}

//go:embed seed.yaml
var demoSeed []byte

// DemoSeed returns the built-in fixtures used when no database is configured.
func DemoSeed() Seed {
	s, err := ParseSeed(demoSeed)
	if err != nil {
		panic(fmt.Sprintf("ticketstore: embedded seed is invalid: %v", err))
	}
	return s
}

func ParseSeed(raw []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

func LoadSeedFile(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(raw)
}
