package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type AssetConfig struct {
	Code   string `yaml:"code"`
	Issuer string `yaml:"issuer"`
}

type AssetsConfig struct {
	Default string        `yaml:"default"`
	Assets  []AssetConfig `yaml:"assets"`
}

// Reference returns the canonical asset reference used across the ledger.
func (a AssetConfig) Reference() string {
	return fmt.Sprintf("%s:%s", a.Code, a.Issuer)
}

// LoadAssetRegistry parses the accepted-asset registry file.
func LoadAssetRegistry(assetsFile string) (*AssetsConfig, error) {
	var assetsPath string
	if filepath.IsAbs(assetsFile) {
		assetsPath = assetsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		assetsPath = filepath.Join(wd, assetsFile)
	}

	data, err := os.ReadFile(assetsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", assetsFile, err)
	}

	var config AssetsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", assetsFile, err)
	}

	for i, asset := range config.Assets {
		if asset.Code == "" {
			return nil, fmt.Errorf("asset at index %d missing code", i)
		}
		if asset.Issuer == "" {
			return nil, fmt.Errorf("asset at index %d missing issuer", i)
		}
	}
	if config.Default == "" && len(config.Assets) > 0 {
		config.Default = config.Assets[0].Reference()
	}

	return &config, nil
}
