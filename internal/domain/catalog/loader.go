package catalog

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/spf13/viper"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Branches     []Branch     `mapstructure:"branches"`
	VoucherTypes []Definition `mapstructure:"voucher_types"`
}

// Load reads a catalog from a YAML file
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return decode(v)
}

// Default parses the built-in catalog
func Default() (*Catalog, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(defaultCatalog)); err != nil {
		return nil, fmt.Errorf("failed to read built-in catalog: %w", err)
	}
	return decode(v)
}

// LoadOrDefault loads path, or the built-in catalog when path is empty
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

func decode(v *viper.Viper) (*Catalog, error) {
	var f catalogFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(f.VoucherTypes, f.Branches), nil
}
