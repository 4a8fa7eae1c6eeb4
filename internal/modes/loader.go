// internal/modes/loader.go
package modes

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/go-viper/mapstructure/v2"
)

// modeFile is the on-disk shape of a global/project mode file: a list
// under a top-level "customModes" key, merged into a registry layer by
// replacing the whole mode by slug rather than koanf's default
// key-by-key nested merge.
type modeFile struct {
	Modes []Mode `koanf:"customModes"`
}

// LoadFile reads and parses a YAML mode file. A missing file is not an
// error — it yields an empty layer, matching the spec's "parsing
// failures are logged and the source is treated as empty" rule for the
// caller to apply; only malformed YAML on an existing file is returned
// as an error here.
func LoadFile(path string) ([]Mode, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modes: failed to read %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("modes: failed to parse %s: %w", path, err)
	}

	var mf modeFile
	conf := koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &mf,
			WeaklyTypedInput: true,
			DecodeHook:       bareGroupEntryHook,
		},
	}
	if err := k.UnmarshalWithConf("", &mf, conf); err != nil {
		return nil, fmt.Errorf("modes: failed to unmarshal %s: %w", path, err)
	}
	return mf.Modes, nil
}

// bareGroupEntryHook lets a groups list entry be either a bare group
// name ("read") or a mapping ({group: edit, file_regex: ...}), matching
// how mode files are written by hand.
func bareGroupEntryHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(GroupEntry{}) {
		return data, nil
	}
	if from.Kind() != reflect.String {
		return data, nil
	}
	return GroupEntry{Group: Group(data.(string))}, nil
}

// GlobalPath returns the conventional path for the global mode file
// under a config directory.
func GlobalPath(configDir string) string {
	return filepath.Join(configDir, "modes.yaml")
}

// ProjectPath returns the conventional path for the project mode file.
func ProjectPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".roomodes")
}
