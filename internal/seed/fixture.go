package seed

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture is the reference data a fresh deployment starts with
type Fixture struct {
	Sectors                []SectorSpec `yaml:"sectors" json:"sectors"`
	Classifications        []string     `yaml:"classifications" json:"classifications"`
	ProfessionalCategories []string     `yaml:"professional_categories" json:"professionalCategories"`
	Users                  []UserSpec   `yaml:"users" json:"users"`
	OpenCurrentPeriod      bool         `yaml:"open_current_period" json:"openCurrentPeriod"`
}

// SectorSpec is one sector to create
type SectorSpec struct {
	Name string `yaml:"name" json:"name"`
	Code string `yaml:"code" json:"code"`
}

// UserSpec is one user to create
type UserSpec struct {
	Email    string `yaml:"email" json:"email"`
	Name     string `yaml:"name" json:"name"`
	Role     string `yaml:"role" json:"role"`
	JobTitle string `yaml:"job_title" json:"jobTitle"`
}

// Load reads a YAML fixture and returns it with the raw bytes.
// Unknown fields fail the decode so typos surface immediately.
func Load(path string) (*Fixture, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	fx, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return fx, data, nil
}

// Default returns the embedded fixture
func Default() (*Fixture, []byte, error) {
	fx, err := Parse(defaultFixture)
	return fx, defaultFixture, err
}

// Parse decodes and validates a fixture
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, err
	}

	if err := Validate(&fx); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Hash fingerprints a fixture through its canonical JSON form
func Hash(fx *Fixture) (string, error) {
	jsonBytes, err := json.Marshal(fx)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
