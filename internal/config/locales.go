package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Locale is a Google News region/language preset.
type Locale struct {
	Region   string `yaml:"region"`   // gl parameter, e.g. "IN"
	Language string `yaml:"language"` // hl parameter, e.g. "en-IN"
}

// LocalesConfig is YAML config structure
// locales:
//
//	in:
//	  region: IN
//	  language: en-IN
type LocalesConfig struct {
	Locales map[string]Locale `yaml:"locales"`
}

// LoadLocales reads the locale preset map from a YAML file.
func LoadLocales(path string) (map[string]Locale, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg LocalesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Locales) == 0 {
		return nil, fmt.Errorf("no locales defined in %s", path)
	}
	return cfg.Locales, nil
}

// ResolveLocale returns the preset for name, falling back to en-IN/IN when
// the name is unknown or the preset file is missing.
func ResolveLocale(locales map[string]Locale, name string) Locale {
	if l, ok := locales[name]; ok {
		return l
	}
	return Locale{Region: "IN", Language: "en-IN"}
}
