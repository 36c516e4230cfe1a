package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "ledger",
		Usage: "Inspect ledger profiles and apply extraction templates",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Value: ".env", Usage: "path to a .env file (optional)"},
			&cli.StringFlag{Name: "snapshot", Usage: "JSON snapshot, local path or gs:// URI"},
			&cli.StringFlag{Name: "project", Usage: "BigQuery project"},
			&cli.StringFlag{Name: "dataset", Usage: "BigQuery dataset"},
			&cli.StringFlag{Name: "templates", Usage: "JSON template list replacing the stored templates"},
			&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Usage: "ledger profile"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of text"},
		},
		Commands: []*cli.Command{
			accountsCommand(),
			registerCommand(),
			applyCommand(),
			checkTemplatesCommand(),
			exportCommand(),
			importCommand(),
			migrateCommand(),
		},
	}
}
