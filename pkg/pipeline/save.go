package pipeline

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/survfit/pkg/errors"
)

// Save writes each artifact to dir as <name>.<format> and returns the
// written paths in format order.
func (r *Result) Save(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}
	formats := make([]string, 0, len(r.Artifacts))
	for f := range r.Artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := filepath.Join(dir, r.Name+"."+f)
		if err := os.WriteFile(path, r.Artifacts[f], 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
