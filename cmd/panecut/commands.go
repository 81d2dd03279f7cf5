package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"k8s.io/klog/v2"

	"github.com/piwi3910/PaneCut/internal/model"
	"github.com/piwi3910/PaneCut/internal/project"
	"github.com/piwi3910/PaneCut/internal/server"
)

func runServe(args []string) error {
	fs, cf := newFlagSet("serve")
	addr := fs.String("addr", "", "listen address (default from config)")
	fs.Parse(args)

	cfg := cf.loadConfig()
	if *addr == "" {
		*addr = cfg.ListenAddr
	}

	cat, err := project.LoadCatalog(cf.catalogPath)
	if err != nil {
		return err
	}

	var settings model.Settings
	cfg.ApplyToSettings(&settings)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	klog.Infof("serving %d catalog stocks, kerf %d mm, margin %d mm", len(cat.Stocks), settings.Kerf, settings.Margin)
	return server.New(cat, settings).ListenAndServe(ctx, *addr)
}

// runCatalog handles "catalog list", "catalog import <file>" and
// "catalog export <file>".
func runCatalog(args []string) error {
	fs, cf := newFlagSet("catalog")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: panecut catalog [flags] list | import <file> | export <file>")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cat, err := project.LoadCatalog(cf.catalogPath)
	if err != nil {
		return err
	}

	switch sub := fs.Arg(0); sub {
	case "", "list":
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSIZE")
		for _, s := range cat.Stocks {
			fmt.Fprintf(tw, "%s\t%s\t%dx%d\n", s.ID, s.Name, s.Width, s.Height)
		}
		return tw.Flush()
	case "import":
		if fs.NArg() != 2 {
			return fmt.Errorf("catalog import needs a file")
		}
		before := len(cat.Stocks)
		merged, err := project.ImportCatalog(fs.Arg(1), cat)
		if err != nil {
			return err
		}
		if err := project.SaveCatalog(cf.catalogPath, merged); err != nil {
			return err
		}
		klog.Infof("imported %d new presets into %s", len(merged.Stocks)-before, cf.catalogPath)
		return nil
	case "export":
		if fs.NArg() != 2 {
			return fmt.Errorf("catalog export needs a file")
		}
		return project.ExportCatalog(fs.Arg(1), cat)
	default:
		return fmt.Errorf("unknown catalog command %q", sub)
	}
}

func runBackup(args []string) error {
	fs, cf := newFlagSet("backup")
	out := fs.String("out", "panecut-backup.json", "backup file to write")
	fs.Parse(args)

	cat, err := project.LoadCatalog(cf.catalogPath)
	if err != nil {
		return err
	}
	if err := project.ExportAllData(*out, cf.loadConfig(), cat); err != nil {
		return err
	}
	klog.Infof("wrote backup %s", *out)
	return nil
}

func runRestore(args []string) error {
	fs, cf := newFlagSet("restore")
	in := fs.String("in", "", "backup file to restore")
	fs.Parse(args)

	if *in == "" {
		return fmt.Errorf("restore needs -in")
	}
	backup, err := project.ImportAllData(*in)
	if err != nil {
		return err
	}
	if err := project.RestoreAllData(backup, cf.configPath, cf.catalogPath); err != nil {
		return err
	}
	klog.Infof("restored backup from %s (created %s)", *in, backup.CreatedAt)
	return nil
}
