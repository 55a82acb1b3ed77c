package profile

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/linkfold/internal/resolver"
)

var envVar = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Loader reads a header profile file and maps it onto the defaults.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Load reads the file and returns the resulting profile.
func (l *Loader) Load() (resolver.Profile, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return resolver.Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	// ${VAR} references are filled from the environment
	data = expandEnv(data)

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return resolver.Profile{}, fmt.Errorf("failed to parse profile yaml: %w", err)
	}

	p, err := Map(f)
	if err != nil {
		return resolver.Profile{}, err
	}
	p.Source = l.filePath
	return p, nil
}

// expandEnv replaces ${VAR} with the value of VAR, or "" when unset.
func expandEnv(data []byte) []byte {
	return envVar.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envVar.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}
