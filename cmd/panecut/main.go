// PaneCut - sheet cutting optimizer
//
// Packs rectangular parts onto stock sheets and writes the layouts as SVG,
// PDF, PNG, Excel and label sheets, or serves the optimizer over HTTP.
//
// Build:
//   go build -o panecut ./cmd/panecut
//
// Usage:
//   panecut optimize -parts parts.csv -stock stock.csv -pdf plan.pdf
//   panecut serve -addr :8080
//   panecut catalog list
//   panecut backup -out backup.json
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/piwi3910/PaneCut/internal/model"
	"github.com/piwi3910/PaneCut/internal/project"
)

const usageText = `usage: panecut <command> [flags]

commands:
  optimize   pack parts onto stock sheets and write the results
  serve      run the HTTP API
  catalog    list, import or export the stock catalog
  backup     write config and catalog to one file
  restore    restore config and catalog from a backup file

Run "panecut <command> -h" for the flags of a command.
`

func usage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "optimize":
		err = runOptimize(args)
	case "serve":
		err = runServe(args)
	case "catalog":
		err = runCatalog(args)
	case "backup":
		err = runBackup(args)
	case "restore":
		err = runRestore(args)
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "panecut: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	klog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "panecut: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configPath  string
	catalogPath string
}

// newFlagSet creates a command flag set carrying the klog flags and the
// config and catalog locations.
func newFlagSet(name string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	klog.InitFlags(fs)

	cf := &commonFlags{}
	fs.StringVar(&cf.configPath, "config", project.DefaultConfigPath(), "application config file")
	fs.StringVar(&cf.catalogPath, "catalog-file", project.DefaultCatalogPath(), "stock catalog file")
	return fs, cf
}

// loadConfig reads the app config, falling back to defaults when it is
// unreadable so a broken file never blocks a run.
func (cf *commonFlags) loadConfig() model.AppConfig {
	cfg, err := project.LoadAppConfig(cf.configPath)
	if err != nil {
		klog.Warningf("using default settings: %v", err)
		return model.DefaultAppConfig()
	}
	return cfg
}
