package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-safe/plugin"
	"github.com/cwbudde/algo-safe/plugin/analysis"
	"github.com/cwbudde/algo-safe/plugin/provenance"
)

// LookupCmd prints stored parameter settings.
type LookupCmd struct {
	Descriptor string `arg:"" help:"Descriptor to look up; the first term is used."`
	Server     bool   `help:"Ask the configured server instead of the local file."`
}

// Run implements the lookup command.
func (c *LookupCmd) Run(app *App) error {
	exp, err := app.store()
	if err != nil {
		return err
	}
	values, w := exp.Lookup(context.Background(), c.Descriptor, c.Server)
	if w != analysis.NoWarning {
		if w == analysis.DescriptorNotInFile {
			if terms := analysis.SplitDescriptor(c.Descriptor); len(terms) > 0 {
				if near, err := exp.Local.Suggest(terms[0], 3); err == nil && len(near) > 0 {
					printKV(app.out, "Did you mean", strings.Join(near, ", "))
				}
			}
		}
		return errors.New(w.Message())
	}

	specs := app.parameterSpecs()
	printTitle(app.out, c.Descriptor)
	for i, v := range values {
		name, units := fmt.Sprintf("Parameter %d", i), ""
		if i < len(specs) {
			name, units = specs[i].Name, specs[i].Units
		}
		printKV(app.out, name, fmt.Sprintf("%.2f%s", v, units))
	}
	return nil
}

// DescriptorsCmd lists local descriptors.
type DescriptorsCmd struct{}

// Run implements the descriptors command.
func (c *DescriptorsCmd) Run(app *App) error {
	exp, err := app.store()
	if err != nil {
		return err
	}
	terms, err := exp.Local.Descriptors()
	if err != nil {
		return err
	}
	for _, t := range terms {
		fmt.Fprintln(app.out, t)
	}
	return nil
}

// DetailsCmd writes the plugin details files.
type DetailsCmd struct {
	Dir string `type:"path" help:"Target directory (defaults to storage.data_dir)."`
}

// Run implements the details command.
func (c *DetailsCmd) Run(app *App) error {
	dir := c.Dir
	if dir == "" {
		dir = app.cfg.Storage.DataDir
	}
	info := app.cfg.Info()
	if err := provenance.WriteDetails(dir, info, plugin.ParamInfos(app.parameterSpecs())); err != nil {
		return err
	}
	printKV(app.out, "Details written", dir)
	return nil
}
