package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAssetsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write assets file: %v", err)
	}
	return path
}

func TestLoadAssetRegistry(t *testing.T) {
	path := writeAssetsFile(t, `
default: "USDC:issuer1"
assets:
  - code: USDC
    issuer: issuer1
  - code: EURC
    issuer: issuer2
`)

	registry, err := LoadAssetRegistry(path)
	if err != nil {
		t.Fatalf("LoadAssetRegistry failed: %v", err)
	}
	if registry.Default != "USDC:issuer1" {
		t.Errorf("Expected default USDC:issuer1, got %s", registry.Default)
	}
	if len(registry.Assets) != 2 {
		t.Fatalf("Expected 2 assets, got %d", len(registry.Assets))
	}
	if registry.Assets[1].Reference() != "EURC:issuer2" {
		t.Errorf("Expected reference EURC:issuer2, got %s", registry.Assets[1].Reference())
	}
}

func TestLoadAssetRegistry_DefaultFallsBackToFirstAsset(t *testing.T) {
	path := writeAssetsFile(t, `
assets:
  - code: USDC
    issuer: issuer1
`)

	registry, err := LoadAssetRegistry(path)
	if err != nil {
		t.Fatalf("LoadAssetRegistry failed: %v", err)
	}
	if registry.Default != "USDC:issuer1" {
		t.Errorf("Expected fallback default USDC:issuer1, got %s", registry.Default)
	}
}

func TestLoadAssetRegistry_RejectsIncompleteAssets(t *testing.T) {
	path := writeAssetsFile(t, `
assets:
  - code: USDC
`)
	if _, err := LoadAssetRegistry(path); err == nil {
		t.Error("Expected error for asset without issuer")
	}
}

func TestLoadAssetRegistry_MissingFile(t *testing.T) {
	if _, err := LoadAssetRegistry(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
