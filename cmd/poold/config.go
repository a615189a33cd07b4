package main

import (
	"embed"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/compilepool/poold/helper"
	"github.com/compilepool/poold/internal"
)

var Validator = validator.New()

//go:embed debug.yml
//go:embed run.yml
var embeddedConfig embed.FS

// LoadConfig reads "<appMode>.yml" from the embedded config files,
// expands environment variables, and validates the result against its
// "validate" tags, mirroring calc-app/config.go's LoadConfig.
func LoadConfig(appMode string) (*helper.Config, error) {
	filename := appMode + ".yml"
	confContent, err := embeddedConfig.ReadFile(filename)
	if err != nil {
		return nil, internal.Errorf("embeddedConfig.ReadFile. filename: %s, err: %w", filename, err)
	}

	confContent = []byte(os.ExpandEnv(string(confContent)))

	conf := &helper.Config{}
	if err := yaml.Unmarshal(confContent, conf); err != nil {
		return nil, internal.Errorf("yaml.Unmarshal. filename: %s, err: %w", filename, err)
	}

	if err := Validator.Struct(conf); err != nil {
		return nil, internal.Errorf("Validator.Struct. filename: %s, err: %w", filename, err)
	}

	return conf, nil
}
