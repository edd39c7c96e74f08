package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Definition tells the harness how to launch a service by name.
type Definition struct {
	Name    string   `json:"name"`
	Cmd     string   `json:"cmd"`
	Workdir string   `json:"workdir"`
	Env     []EnvVar `json:"env"`
}

func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("invalid definition: name is required")
	}
	if d.Cmd == "" {
		return fmt.Errorf("invalid definition: cmd is required")
	}
	return nil
}

func (d Definition) WithDefaults(defaultDir string) Definition {
	if d.Workdir == "" {
		d.Workdir = defaultDir
	}
	return d
}

// ReadDefinitions parses a yaml list of service definitions. A definition
// without a workdir runs in the directory holding the definitions file.
func ReadDefinitions(path string) (map[string]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var defs []Definition
	err = yaml.Unmarshal(data, &defs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal definitions file %s: %s", path, err)
	}

	byName := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, ok := byName[def.Name]; ok {
			return nil, fmt.Errorf("duplicate definition for '%s'", def.Name)
		}
		byName[def.Name] = def.WithDefaults(filepath.Dir(path))
	}
	return byName, nil
}
