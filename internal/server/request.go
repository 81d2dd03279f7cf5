package server

import (
	"fmt"
	"strings"

	"github.com/piwi3910/PaneCut/internal/model"
)

// OptimizeRequest is the JSON body of the optimize and report endpoints.
// Nil settings take the server defaults. Stocks may be given inline, as
// catalog preset IDs, or both; inline stocks come first.
type OptimizeRequest struct {
	Stocks      []model.StockSize   `json:"stocks"`
	StockIDs    []string            `json:"stock_ids"`
	Parts       []model.PartRequest `json:"parts"`
	Kerf        *int                `json:"kerf"`
	Margin      *int                `json:"margin"`
	AllowRotate *bool               `json:"allow_rotate"`
}

// normalize turns a request into engine input the way the order form does:
// negative kerf and margin become 0, rows with non-positive sizes or
// quantities are dropped, and blank names are numbered by row.
func (r OptimizeRequest) normalize(catalog model.Catalog, defaults model.Settings) ([]model.StockSize, []model.PartRequest, model.Settings, error) {
	settings := defaults
	if r.Kerf != nil {
		settings.Kerf = *r.Kerf
	}
	if r.Margin != nil {
		settings.Margin = *r.Margin
	}
	if r.AllowRotate != nil {
		settings.AllowRotate = *r.AllowRotate
	}
	settings.Kerf = max(0, settings.Kerf)
	settings.Margin = max(0, settings.Margin)

	var stocks []model.StockSize
	for i, s := range r.Stocks {
		if s.Width <= 0 || s.Height <= 0 {
			continue
		}
		if strings.TrimSpace(s.Label) == "" {
			s.Label = fmt.Sprintf("Sheet %d", i+1)
		}
		stocks = append(stocks, s)
	}
	for _, id := range r.StockIDs {
		preset := catalog.FindByID(id)
		if preset == nil {
			return nil, nil, settings, fmt.Errorf("unknown stock id %q", id)
		}
		stocks = append(stocks, preset.ToStockSize())
	}

	var parts []model.PartRequest
	for i, p := range r.Parts {
		if p.Width <= 0 || p.Height <= 0 || p.Quantity <= 0 {
			continue
		}
		p.Code = strings.TrimSpace(p.Code)
		if p.Code == "" {
			p.Code = fmt.Sprintf("P%d", i+1)
		}
		parts = append(parts, p)
	}

	if len(stocks) == 0 {
		return nil, nil, settings, fmt.Errorf("at least one stock size is required")
	}
	if len(parts) == 0 {
		return nil, nil, settings, fmt.Errorf("at least one part is required")
	}
	return stocks, parts, settings, nil
}
