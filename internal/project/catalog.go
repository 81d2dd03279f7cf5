package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/PaneCut/internal/model"
)

// DefaultCatalogPath returns the default file path for the stock catalog.
// This is located at ~/.panecut/catalog.json.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultConfigDir(), "catalog.json")
}

// SaveCatalog writes the catalog to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveCatalog(path string, cat model.Catalog) error {
	return writeJSON(path, cat)
}

// LoadCatalog reads the catalog from the specified JSON file.
// If the file does not exist, it returns the default catalog and saves it.
func LoadCatalog(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cat := model.DefaultCatalog()
			if saveErr := SaveCatalog(path, cat); saveErr != nil {
				return cat, saveErr
			}
			return cat, nil
		}
		return model.Catalog{}, err
	}
	var cat model.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return model.Catalog{}, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	if err := validateCatalog(cat); err != nil {
		return model.Catalog{}, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return cat, nil
}

// LoadOrCreateCatalog loads the catalog from the default path.
// If the file does not exist, it creates one with default entries.
func LoadOrCreateCatalog() (model.Catalog, string, error) {
	path := DefaultCatalogPath()
	cat, err := LoadCatalog(path)
	return cat, path, err
}

// ExportCatalog exports the catalog to a user-specified JSON file.
func ExportCatalog(path string, cat model.Catalog) error {
	return SaveCatalog(path, cat)
}

// ImportCatalog imports a catalog from a user-specified JSON file,
// merging it with the existing catalog. Duplicate IDs are skipped.
func ImportCatalog(path string, existing model.Catalog) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Catalog
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	if err := validateCatalog(imported); err != nil {
		return existing, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return MergeCatalog(existing, imported), nil
}

// MergeCatalog appends the presets of imported whose IDs are not yet in
// existing, keeping the order of both.
func MergeCatalog(existing, imported model.Catalog) model.Catalog {
	stockIDs := make(map[string]bool, len(existing.Stocks))
	for _, s := range existing.Stocks {
		stockIDs[s.ID] = true
	}

	merged := model.Catalog{Stocks: append([]model.StockPreset(nil), existing.Stocks...)}
	for _, s := range imported.Stocks {
		if !stockIDs[s.ID] {
			merged.Stocks = append(merged.Stocks, s)
			stockIDs[s.ID] = true
		}
	}
	return merged
}

func validateCatalog(cat model.Catalog) error {
	for _, s := range cat.Stocks {
		if err := s.ToStockSize().Validate(); err != nil {
			return err
		}
	}
	return nil
}
