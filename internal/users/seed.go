package users

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk layout accepted by LoadSeedFile.
type seedFile struct {
	Users []User `yaml:"users"`
}

// DefaultSeed returns the records the service starts with when no seed file
// is configured.
func DefaultSeed() []User {
	return []User{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Age: 30},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Age: 25},
		{ID: 3, Name: "Bob Johnson", Email: "bob@example.com", Age: 35},
	}
}

// LoadSeedFile reads a YAML file of the form
//
//	users:
//	  - id: 1
//	    name: John Doe
//	    email: john@example.com
//	    age: 30
//
// and returns its records. Validation happens in NewStore.
func LoadSeedFile(path string) ([]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if f.Users == nil {
		f.Users = []User{}
	}
	return f.Users, nil
}
