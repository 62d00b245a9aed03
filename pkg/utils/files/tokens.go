package files

import (
	"encoding/json"
	"path/filepath"

	toml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// LoadTokens reads a token file and decodes it into out based on the file
// extension. JSON, YAML (.yml or .yaml) and TOML are supported; anything
// else is parsed as TOML.
func LoadTokens(path string, out interface{}) error {
	content, err := ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read token file %s", path)
	}

	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(content, out)
	case ".yml", ".yaml":
		err = yaml.Unmarshal(content, out)
	default:
		err = unmarshalTOML(content, out)
	}
	return errors.Wrapf(err, "failed to parse token file %s", path)
}

// unmarshalTOML goes through a generic tree so the json field tags on out
// apply regardless of the casing used in the file.
func unmarshalTOML(content []byte, out interface{}) error {
	tree, err := toml.LoadBytes(content)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(tree.ToMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
