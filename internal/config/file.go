package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	errConfigFileIsDir = errors.New("config file is dir")
)

// loadFile decodes the YAML file at path over c. Keys missing from the
// file keep the values already in c.
func loadFile(path string, c *Config) error {
	finfo, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "stat config file")
	}

	if finfo.IsDir() {
		return errConfigFileIsDir
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return errors.Wrapf(err, "decode %s", path)
	}

	return nil
}
