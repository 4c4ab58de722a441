package pipeline

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/forcelayout/pkg/errors"
)

// LoadOptionsFile reads options from a TOML file:
//
//	seed = 7
//	only = ["load", "filter"]
//
//	[layout]
//	optimal_distance = 150
//	law = "inverse-square"
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults. Defaults are not applied.
func LoadOptionsFile(path string) (Options, error) {
	var opts Options
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Options{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "options file %s", path)
		}
		return Options{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse options file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return opts, nil
}
