package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/camgunz/cdump/castxml"
	"github.com/camgunz/cdump/config"
	"github.com/camgunz/cdump/resolve"
)

var log = commonlog.GetLogger("cdump")

// inputFlags are the flags shared by every command that reads C inputs.
// Set flags override the loaded configuration.
type inputFlags struct {
	xml       bool
	castxml   string
	flags     []string
	strict    bool
	conflicts string
	mainOnly  bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.xml, "xml", false, "inputs are castxml XML documents, not C sources")
	cmd.Flags().StringVar(&f.castxml, "castxml", "", "path to the castxml binary")
	cmd.Flags().StringArrayVar(&f.flags, "flag", nil, "extra castxml flag (repeatable)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "abort on the first resolution error")
	cmd.Flags().StringVar(&f.conflicts, "conflicts", "", "conflict policy for same-named definitions (first, error)")
	cmd.Flags().BoolVar(&f.mainOnly, "main-only", false, "only emit declarations from the input file itself")
}

func (f *inputFlags) apply(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("castxml") {
		c.CastXML.Binary = f.castxml
	}
	if cmd.Flags().Changed("flag") {
		c.CastXML.Flags = append(c.CastXML.Flags, f.flags...)
	}
	if cmd.Flags().Changed("strict") {
		c.Resolve.Strict = f.strict
	}
	if cmd.Flags().Changed("conflicts") {
		c.Resolve.Conflicts = f.conflicts
	}
	if cmd.Flags().Changed("main-only") {
		c.Resolve.MainOnly = f.mainOnly
	}
}

func castXMLOptions(c *config.Config) (castxml.Options, error) {
	timeout, err := c.CastXMLTimeout()
	if err != nil {
		return castxml.Options{}, err
	}
	return castxml.Options{Binary: c.CastXML.Binary, Flags: c.CastXML.Flags, Timeout: timeout}, nil
}

func resolveOptions(c *config.Config) (resolve.Options, error) {
	policy, err := resolve.ParseConflictPolicy(c.Resolve.Conflicts)
	if err != nil {
		return resolve.Options{}, err
	}
	return resolve.Options{Strict: c.Resolve.Strict, Conflicts: policy}, nil
}

// loadInputs resolves every input into one table, in argument order.
// Inputs ending in .xml are always read as castxml documents. When an input
// fails, the walker holding the earlier inputs is returned with the error.
func loadInputs(ctx context.Context, c *config.Config, xmlInputs bool, paths []string) (*resolve.Walker, error) {
	cxOpts, err := castXMLOptions(c)
	if err != nil {
		return nil, err
	}
	resOpts, err := resolveOptions(c)
	if err != nil {
		return nil, err
	}

	walker := resolve.NewWalker(nil, resOpts)
	for _, path := range paths {
		var doc *castxml.Document
		if xmlInputs || strings.EqualFold(filepath.Ext(path), ".xml") {
			doc, err = castxml.ParseFile(path)
		} else {
			doc, err = castxml.Run(ctx, cxOpts, path)
		}
		if err != nil {
			return walker, fmt.Errorf("load %s: %w", path, err)
		}

		fileID := ""
		if c.Resolve.MainOnly {
			fileID = mainFileID(doc, path)
		}
		if err := walker.WalkFile(doc, fileID); err != nil {
			return walker, fmt.Errorf("resolve %s: %w", path, err)
		}
	}

	stats := walker.Stats()
	log.Info("resolved inputs",
		"files", len(paths),
		"definitions", stats.Definitions,
		"duplicates", stats.Duplicates,
		"conflicts", stats.Conflicts,
		"failed", stats.Failed)
	return walker, nil
}

// mainFileID finds the File node of the input. For an XML input the source
// is guessed from the document's name: sample.xml stands for sample.h or
// sample.c.
func mainFileID(doc *castxml.Document, path string) string {
	candidates := []string{path}
	if abs, err := filepath.Abs(path); err == nil {
		candidates = append(candidates, abs)
	}
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		stem := strings.TrimSuffix(path, filepath.Ext(path))
		for _, ext := range []string{"", ".h", ".c"} {
			candidates = append(candidates, stem+ext, filepath.Base(stem+ext))
		}
	}
	for _, candidate := range candidates {
		if id, ok := doc.FileID(candidate); ok {
			return id
		}
	}
	log.Warning("main file not found in castxml output; emitting everything", "path", path)
	return ""
}
