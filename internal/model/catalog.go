package model

import "github.com/google/uuid"

// StockPreset represents a reusable stock sheet definition.
type StockPreset struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// NewStockPreset creates a new StockPreset with a generated ID.
func NewStockPreset(name string, width, height int) StockPreset {
	return StockPreset{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Width:  width,
		Height: height,
	}
}

// ToStockSize converts a preset into the size the optimizer opens sheets from.
func (sp StockPreset) ToStockSize() StockSize {
	return StockSize{Width: sp.Width, Height: sp.Height, Label: sp.Name}
}

// Catalog holds the user's saved stock presets. Order matters: it breaks
// ties between equally sized stocks.
type Catalog struct {
	Stocks []StockPreset `json:"stocks"`
}

// DefaultCatalog returns a catalog populated with common float glass sizes.
func DefaultCatalog() Catalog {
	return Catalog{
		Stocks: []StockPreset{
			NewStockPreset("Jumbo 6000x3210", 6000, 3210),
			NewStockPreset("Split 3210x2250", 3210, 2250),
			NewStockPreset("Split 3210x2000", 3210, 2000),
			NewStockPreset("Stock 2550x1605", 2550, 1605),
			NewStockPreset("Stock 2250x1605", 2250, 1605),
			NewStockPreset("Small 1605x1200", 1605, 1200),
		},
	}
}

// StockSizes returns the catalog as optimizer input, preserving order.
func (c Catalog) StockSizes() []StockSize {
	sizes := make([]StockSize, len(c.Stocks))
	for i, s := range c.Stocks {
		sizes[i] = s.ToStockSize()
	}
	return sizes
}

// FindByID returns a pointer to the preset with the given ID, or nil.
func (c *Catalog) FindByID(id string) *StockPreset {
	for i := range c.Stocks {
		if c.Stocks[i].ID == id {
			return &c.Stocks[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first preset with the given name, or nil.
func (c *Catalog) FindByName(name string) *StockPreset {
	for i := range c.Stocks {
		if c.Stocks[i].Name == name {
			return &c.Stocks[i]
		}
	}
	return nil
}

// Names returns the preset names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Stocks))
	for i, s := range c.Stocks {
		names[i] = s.Name
	}
	return names
}
