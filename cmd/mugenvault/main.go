package main

import (
	"fmt"
	"os"

	"github.com/mwantia/mugenvault/cmd/mugenvault/cli"
	"github.com/mwantia/mugenvault/cmd/mugenvault/cli/client"
	"github.com/mwantia/mugenvault/cmd/mugenvault/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())
	root.AddCommand(server.NewDatabaseCommand())

	root.AddCommand(client.NewLibraryCommand())
	root.AddCommand(client.NewCollectionCommand())
	root.AddCommand(client.NewRulesCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
