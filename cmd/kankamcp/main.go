package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "kankamcp",
		Short: "MCP server bridging AI agents to a Kanka campaign",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
