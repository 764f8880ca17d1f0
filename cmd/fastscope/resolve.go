package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/t14raptor/fastscope/config"
	"github.com/t14raptor/fastscope/diag"
	"github.com/t14raptor/fastscope/driver"
	"github.com/t14raptor/fastscope/source"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] <file.json|directory>...",
	Short: "Resolve the scopes of ESTree files",
	Long: `Resolve every ESTree file given, or found below the given directories,
and report scoping errors. The JavaScript source next to each file (a.js for
a.js.json or a.json) is used for positions when it exists.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Bool("module", false, "resolve every file as an ES module")
	resolveCmd.Flags().Bool("strict", false, "resolve scripts as strict code")
	resolveCmd.Flags().Bool("warn-undefined", true, "warn about undeclared identifiers in strict code")
	resolveCmd.Flags().StringSlice("known-global", nil, "extra ambient global (repeatable)")
	resolveCmd.Flags().Int("max-diagnostics", 0, "maximum diagnostics kept per file (0=config)")
	resolveCmd.Flags().Bool("dump", false, "print the scope graph of every file")
	resolveCmd.Flags().Bool("snapshot", false, "write <input>.scope.mp next to every file")
	resolveCmd.Flags().Bool("no-snippet", false, "do not print source lines under diagnostics")
	resolveCmd.Flags().Bool("cache", false, "reuse results from the disk cache")
	resolveCmd.Flags().String("cache-dir", "", "disk cache directory (default: $XDG_CACHE_HOME/fastscope)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyResolveFlags(cmd, &cfg); err != nil {
		return err
	}
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}

	dump, _ := cmd.Flags().GetBool("dump")
	snapshot, _ := cmd.Flags().GetBool("snapshot")
	noSnippet, _ := cmd.Flags().GetBool("no-snippet")
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}

	res, err := driver.Run(cmd.Context(), args, driver.Options{
		Config:   cfg,
		Snapshot: snapshot,
		Dump:     dump,
		Cache:    cache,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dump {
		for _, fr := range res.Results {
			if fr.Dump == "" {
				continue
			}
			if _, err := fmt.Fprintf(out, "== %s ==\n%s", fr.Path, fr.Dump); err != nil {
				return err
			}
		}
	}
	if snapshot {
		if err := writeSnapshots(res); err != nil {
			return err
		}
	}

	diags := res.Diagnostics()
	opts := diag.RenderOptions{Color: useColor(cfg.Output.Color, os.Stderr), Snippet: !noSnippet}
	if err := diag.Render(cmd.ErrOrStderr(), res.Files, diags, opts); err != nil {
		return err
	}
	for _, fr := range res.Results {
		if fr.Dropped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d more diagnostic(s) not shown\n", fr.Path, fr.Dropped)
		}
	}
	if n := res.ErrorCount(); n > 0 {
		return fmt.Errorf("%d error(s) in %d file(s)", n, len(res.Results))
	}
	return nil
}

func applyResolveFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("module") {
		cfg.Modules.Enabled, _ = flags.GetBool("module")
	}
	if flags.Changed("strict") {
		cfg.Resolver.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("warn-undefined") {
		cfg.Resolver.WarnUndefined, _ = flags.GetBool("warn-undefined")
	}
	globals, err := flags.GetStringSlice("known-global")
	if err != nil {
		return fmt.Errorf("failed to get known-global flag: %w", err)
	}
	cfg.Resolver.KnownGlobals = append(cfg.Resolver.KnownGlobals, globals...)
	if n, _ := flags.GetInt("max-diagnostics"); n > 0 {
		cfg.Output.MaxDiagnostics = n
	}
	return cfg.Validate()
}

func openCache(cmd *cobra.Command) (*driver.Cache, error) {
	enabled, _ := cmd.Flags().GetBool("cache")
	dir, _ := cmd.Flags().GetString("cache-dir")
	if !enabled && dir == "" {
		return nil, nil
	}
	if dir == "" {
		var err error
		if dir, err = driver.DefaultCacheDir("fastscope"); err != nil {
			return nil, fmt.Errorf("cache directory: %w", err)
		}
	}
	return driver.OpenCache(dir)
}

func writeSnapshots(res *driver.Result) error {
	for _, fr := range res.Results {
		if fr.Snapshot == nil {
			continue
		}
		f, err := os.Create(fr.Path + ".scope.mp")
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		err = fr.Snapshot.Encode(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", fr.Path, err)
		}
	}
	return nil
}

var graphCmd = &cobra.Command{
	Use:   "graph [flags] <file.json|directory>...",
	Short: "Print the module dependency order",
	Long: `Resolve the given files as modules and print them dependencies first,
one line per batch of files that do not depend on each other, followed by the
import cycles.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Modules.Enabled = true
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	res, err := driver.Run(cmd.Context(), args, driver.Options{Config: cfg, Logger: log})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	names := func(ids []source.FileID) []string {
		paths := make([]string, len(ids))
		for i, id := range ids {
			paths[i] = res.Files.Get(id).Path
		}
		slices.Sort(paths)
		return paths
	}
	placed := make(map[source.FileID]bool)
	for i, batch := range res.Order.Batches {
		fmt.Fprintf(out, "%d: %s\n", i, strings.Join(names(batch), " "))
	}
	for _, id := range res.Order.Order {
		placed[id] = true
	}
	for _, cycle := range res.Order.Cycles {
		fmt.Fprintf(out, "cycle: %s\n", strings.Join(names(cycle), " "))
		for _, id := range cycle {
			placed[id] = true
		}
	}
	var blocked []source.FileID
	for id := range res.Graph.Nodes() {
		if !placed[id] {
			blocked = append(blocked, id)
		}
	}
	if len(blocked) > 0 {
		fmt.Fprintf(out, "blocked: %s\n", strings.Join(names(blocked), " "))
	}
	return diag.Render(cmd.ErrOrStderr(), res.Files, res.Diagnostics(), diag.RenderOptions{
		Color:   useColor(cfg.Output.Color, os.Stderr),
		Snippet: true,
	})
}
