package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/onexay/gitobs/internal/repo"
)

// HookSpec is a webhook registered at startup.
type HookSpec struct {
	Branch string `toml:"branch"`
	Event  string `toml:"event"`
}

type hooksFile struct {
	Hooks []HookSpec `toml:"hook"`
}

// LoadHooks parses a TOML file of [[hook]] tables. Hooks keep file order,
// which is also their dispatch order.
func LoadHooks(path string) ([]HookSpec, error) {
	var file hooksFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hooks file %q: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("hooks file %q: unknown key %s", path, undecoded[0])
	}

	for i, spec := range file.Hooks {
		if spec.Branch == "" {
			return nil, fmt.Errorf("hooks file %q: hook %d has no branch", path, i+1)
		}
		if _, err := repo.ParseEventType(spec.Event); err != nil {
			return nil, fmt.Errorf("hooks file %q: hook %d: %w", path, i+1, err)
		}
	}
	return file.Hooks, nil
}
