package timeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"encore-ai/internal/types"
)

// Save writes the timeline to path as pretty-printed JSON, creating parent
// directories as needed. The file doubles as the render props handed to
// the engine, so the field casing must stay stable.
func Save(t *types.Timeline, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*types.Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t types.Timeline
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
