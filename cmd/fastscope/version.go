package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var versionShowFull bool

func init() {
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "include the VCS revision and Go version")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the fastscope version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		bold := color.New(color.Bold)
		if useColor(cfg.Output.Color, os.Stdout) {
			bold.EnableColor()
		} else {
			bold.DisableColor()
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", bold.Sprint("fastscope"), version())
		if !versionShowFull {
			return nil
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return nil
		}
		fmt.Fprintf(out, "go: %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision", "vcs.time", "vcs.modified":
				fmt.Fprintf(out, "%s: %s\n", s.Key, s.Value)
			}
		}
		return nil
	},
}

// version is the module version stamped by the go tool, or "devel".
func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "devel"
	}
	return info.Main.Version
}
