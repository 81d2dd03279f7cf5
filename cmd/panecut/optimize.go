package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"k8s.io/klog/v2"

	"github.com/piwi3910/PaneCut/internal/engine"
	"github.com/piwi3910/PaneCut/internal/export"
	"github.com/piwi3910/PaneCut/internal/importer"
	"github.com/piwi3910/PaneCut/internal/model"
	"github.com/piwi3910/PaneCut/internal/project"
)

// maxRecentProjects caps the recent list kept in the app config.
const maxRecentProjects = 10

type optimizeOptions struct {
	partsPath   string
	stockPath   string
	catalog     string
	projectPath string
	savePath    string

	kerf        int
	margin      int
	allowRotate bool

	svgDir     string
	pdfPath    string
	labelsPath string
	xlsxPath   string
	pngDir     string
	pngSize    int
	jsonPath   string
}

func runOptimize(args []string) error {
	fs, cf := newFlagSet("optimize")
	var o optimizeOptions
	o.register(fs)
	fs.Parse(args)

	cfg := cf.loadConfig()

	p, err := o.loadInputs(cf, cfg, fs.Visit)
	if err != nil {
		return err
	}

	result, err := engine.New(p.Stocks, p.Settings).Run(p.Parts)
	if err != nil {
		return err
	}
	p.Result = &result

	if o.jsonPath != "-" {
		printSummary(os.Stdout, result)
	}
	if err := o.writeOutputs(result); err != nil {
		return err
	}

	if o.savePath != "" {
		if err := project.SaveProject(o.savePath, p); err != nil {
			return err
		}
		cfg.AddRecentProject(o.savePath, maxRecentProjects)
		if err := project.SaveAppConfig(cf.configPath, cfg); err != nil {
			klog.Warningf("cannot update recent projects: %v", err)
		}
		klog.Infof("saved project %s", o.savePath)
	}
	return nil
}

// register binds the optimize flags. Kerf, margin and rotation carry zero
// defaults: they only apply when set explicitly, otherwise the project or
// app config value is used.
func (o *optimizeOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.partsPath, "parts", "", "part list (CSV, XLSX or DXF)")
	fs.StringVar(&o.stockPath, "stock", "", "stock sizes (CSV or XLSX)")
	fs.StringVar(&o.catalog, "catalog", "", `comma-separated catalog preset names to use as stock, or "all"`)
	fs.StringVar(&o.projectPath, "project", "", "load stocks, parts and settings from a saved project")
	fs.StringVar(&o.savePath, "save", "", "save inputs and result as a project file")
	fs.IntVar(&o.kerf, "kerf", 0, "blade width in mm (default from config)")
	fs.IntVar(&o.margin, "margin", 0, "unusable sheet border in mm (default from config)")
	fs.BoolVar(&o.allowRotate, "rotate", false, "allow 90 degree rotation (default from config)")
	fs.StringVar(&o.svgDir, "svg-dir", "", "write one SVG per sheet into this directory")
	fs.StringVar(&o.pdfPath, "pdf", "", "write the PDF report")
	fs.StringVar(&o.labelsPath, "labels", "", "write QR part labels as PDF")
	fs.StringVar(&o.xlsxPath, "xlsx", "", "write the Excel cut list")
	fs.StringVar(&o.pngDir, "png-dir", "", "write one PNG preview per sheet into this directory")
	fs.IntVar(&o.pngSize, "png-size", export.DefaultPreviewSize, "longest edge of PNG previews in pixels")
	fs.StringVar(&o.jsonPath, "json", "", `write the result as JSON ("-" for stdout)`)
}

// loadInputs assembles the project to run. Settings start from the saved
// project or the app config; flags given on the command line override them.
func (o optimizeOptions) loadInputs(cf *commonFlags, cfg model.AppConfig, visit func(func(*flag.Flag))) (model.Project, error) {
	p := model.NewProject()
	cfg.ApplyToSettings(&p.Settings)

	if o.projectPath != "" {
		loaded, err := project.LoadProject(o.projectPath)
		if err != nil {
			return p, err
		}
		p = loaded
	}

	visit(func(f *flag.Flag) {
		switch f.Name {
		case "kerf":
			p.Settings.Kerf = o.kerf
		case "margin":
			p.Settings.Margin = o.margin
		case "rotate":
			p.Settings.AllowRotate = o.allowRotate
		}
	})

	if o.partsPath != "" {
		res := importer.ImportPartsFile(o.partsPath)
		logWarnings(o.partsPath, res.Warnings)
		if err := res.Err(); err != nil {
			return p, fmt.Errorf("%s: %w", o.partsPath, err)
		}
		p.Parts = res.Parts
	}
	if o.stockPath != "" {
		res := importer.ImportStocksFile(o.stockPath)
		logWarnings(o.stockPath, res.Warnings)
		if err := res.Err(); err != nil {
			return p, fmt.Errorf("%s: %w", o.stockPath, err)
		}
		p.Stocks = res.Stocks
	}

	// Catalog stock is used when asked for, or when nothing else names a stock.
	if o.catalog != "" || len(p.Stocks) == 0 {
		cat, err := project.LoadCatalog(cf.catalogPath)
		if err != nil {
			return p, err
		}
		stocks, err := selectCatalogStocks(cat, o.catalog)
		if err != nil {
			return p, err
		}
		p.Stocks = append(p.Stocks, stocks...)
	}

	if len(p.Parts) == 0 {
		return p, fmt.Errorf("no parts: use -parts or -project")
	}
	return p, nil
}

// selectCatalogStocks resolves a comma-separated list of preset names.
// An empty list or "all" selects the whole catalog in catalog order.
func selectCatalogStocks(cat model.Catalog, names string) ([]model.StockSize, error) {
	if names == "" || names == "all" {
		return cat.StockSizes(), nil
	}
	var stocks []model.StockSize
	for _, name := range strings.Split(names, ",") {
		preset := cat.FindByName(strings.TrimSpace(name))
		if preset == nil {
			return nil, fmt.Errorf("no catalog preset named %q (have: %s)", name, strings.Join(cat.Names(), ", "))
		}
		stocks = append(stocks, preset.ToStockSize())
	}
	return stocks, nil
}

func logWarnings(source string, warnings []string) {
	for _, w := range warnings {
		klog.Warningf("%s: %s", source, w)
	}
}

func (o optimizeOptions) writeOutputs(result model.Result) error {
	if o.svgDir != "" {
		paths, err := export.ExportSVGs(o.svgDir, result)
		if err != nil {
			return err
		}
		klog.Infof("wrote %d SVG files to %s", len(paths), o.svgDir)
	}
	if o.pngDir != "" {
		paths, err := export.ExportPNGs(o.pngDir, result, o.pngSize)
		if err != nil {
			return err
		}
		klog.Infof("wrote %d PNG previews to %s", len(paths), o.pngDir)
	}

	files := []struct {
		path  string
		write func(string, model.Result) error
	}{
		{o.pdfPath, export.ExportPDF},
		{o.labelsPath, export.ExportLabels},
		{o.xlsxPath, export.ExportCutList},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := f.write(f.path, result); err != nil {
			return err
		}
		klog.Infof("wrote %s", f.path)
	}

	switch o.jsonPath {
	case "":
	case "-":
		return writeJSON(os.Stdout, result)
	default:
		f, err := os.Create(o.jsonPath)
		if err != nil {
			return err
		}
		if err := writeJSON(f, result); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSummary prints one line per sheet followed by the run totals.
func printSummary(w io.Writer, result model.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSHEET\tSIZE\tPARTS\tUSED")
	for i, s := range result.Sheets {
		fmt.Fprintf(tw, "%d\t%s\t%dx%d\t%d\t%.1f%%\n", i+1, s.Label, s.Width, s.Height, len(s.Placements), s.Efficiency())
	}
	tw.Flush()

	sum := result.Summary
	fmt.Fprintf(w, "\nSheets: %d  Total: %.3f m²  Parts: %.3f m²  Waste: %.3f m² (%.2f%%)\n",
		sum.SheetCount, sum.TotalSheetM2(), sum.TotalUsedM2(), sum.WasteM2(), sum.WastePct)
	fmt.Fprintf(w, "Kerf: %d mm  Margin: %d mm  Rotation: %t\n", sum.Kerf, sum.Margin, sum.AllowRotate)
}
