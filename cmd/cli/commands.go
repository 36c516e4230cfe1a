package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dvloznov/ledger-core/internal/config"
	"github.com/dvloznov/ledger-core/internal/domain"
	"github.com/dvloznov/ledger-core/internal/gcs"
	"github.com/dvloznov/ledger-core/internal/hierarchy"
	"github.com/dvloznov/ledger-core/internal/ledgerview"
	"github.com/dvloznov/ledger-core/internal/register"
)

func accountsCommand() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "Print the account tree with balances",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "zero", Usage: "include zero-balance accounts"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, cmd, func(ctx context.Context, cfg *config.Config, svc *ledgerview.Service) error {
				includeZero := cfg.ShowZeroBalances
				if cmd.IsSet("zero") {
					includeZero = cmd.Bool("zero")
				}

				tree, err := svc.AccountTree(ctx, cfg.Profile, includeZero)
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return printJSON(stdout(cmd), tree)
				}

				tw := tabwriter.NewWriter(stdout(cmd), 0, 4, 2, ' ', 0)
				for _, acc := range hierarchy.Accounts(tree.Visible) {
					fmt.Fprintf(tw, "%s%s\t%s\n", strings.Repeat("  ", acc.Level), lastSegment(acc.Name), formatBalances(acc.Balances))
				}
				return tw.Flush()
			})
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Print transactions by date, with running totals for an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "account", Aliases: []string{"a"}, Usage: "account name substring, case-insensitive"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, cmd, func(ctx context.Context, cfg *config.Config, svc *ledgerview.Service) error {
				var filter *string
				if cmd.IsSet("account") {
					v := cmd.String("account")
					filter = &v
				}

				items, err := svc.Register(ctx, cfg.Profile, filter)
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return printJSON(stdout(cmd), items)
				}
				return printRegister(stdout(cmd), items)
			})
		},
	}
}

func printRegister(w io.Writer, items []register.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range items {
		switch it := it.(type) {
		case register.Header:
			fmt.Fprintf(tw, "# %s\n", it.Text)
		case register.DateDelimiter:
			if it.MonthShown {
				fmt.Fprintf(tw, "\n== %s %d ==\n", it.Date.Month, it.Date.Year)
			}
			fmt.Fprintf(tw, "%s\n", it.Date)
		case register.TransactionItem:
			total := ""
			if it.RunningTotal != nil {
				total = *it.RunningTotal
			}
			fmt.Fprintf(tw, "  %s\t\t%s\n", it.Transaction.Description, total)
			for _, l := range it.Transaction.Lines {
				name := l.AccountName
				if name == it.BoldAccountName {
					name = "*" + name
				}
				amount := ""
				if l.Amount != nil {
					amount = fmt.Sprintf("%.2f %s", *l.Amount, l.Currency)
				}
				fmt.Fprintf(tw, "    %s\t%s\t\n", name, amount)
			}
		}
	}
	return tw.Flush()
}

func applyCommand() *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "Turn scanned or pasted text into a transaction draft",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read the text from a local path or gs:// URI"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, cmd, func(ctx context.Context, cfg *config.Config, svc *ledgerview.Service) error {
				text, err := inputText(ctx, cmd)
				if err != nil {
					return err
				}

				draft, used, err := svc.ApplyTemplates(ctx, cfg.Profile, text)
				if err != nil {
					return err
				}
				if draft == nil {
					return errors.New("no template matched")
				}
				if !cmd.Bool("json") {
					fmt.Fprintf(stderr(cmd), "matched template %q (v%d)\n", used.Name, used.Version)
				}
				return printJSON(stdout(cmd), draft)
			})
		},
	}
}

func inputText(ctx context.Context, cmd *cli.Command) (string, error) {
	if !cmd.IsSet("file") {
		text := strings.Join(cmd.Args().Slice(), " ")
		if text == "" {
			return "", errors.New("text argument or --file is required")
		}
		return text, nil
	}

	src := cmd.String("file")
	var storage gcs.Storage
	if gcs.IsURI(src) {
		c, err := gcs.NewClient(ctx)
		if err != nil {
			return "", err
		}
		defer c.Close()
		storage = c
	}
	data, err := gcs.ReadSource(ctx, storage, src)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func checkTemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-templates",
		Usage: "Validate templates and run each against its test text",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, cmd, func(ctx context.Context, cfg *config.Config, svc *ledgerview.Service) error {
				checks, err := svc.CheckTemplates(ctx, cfg.Profile)
				if err != nil {
					return err
				}
				if cmd.Bool("json") {
					return printJSON(stdout(cmd), checks)
				}

				failed := 0
				tw := tabwriter.NewWriter(stdout(cmd), 0, 4, 2, ' ', 0)
				for _, c := range checks {
					status := "ok"
					switch {
					case c.Error != "":
						status = c.Error
						failed++
					case c.Template.TestText == "":
						status = "ok (no test text)"
					case c.Sample == nil:
						status = "test text does not produce a draft"
						failed++
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\n", c.Template.ID, c.Template.Name, status)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d templates failed", failed, len(checks))
				}
				return nil
			})
		},
	}
}

func lastSegment(name string) string {
	if i := strings.LastIndex(name, domain.AccountSeparator); i >= 0 {
		return name[i+1:]
	}
	return name
}

func formatBalances(balances []domain.Amount) string {
	parts := make([]string, 0, len(balances))
	for _, b := range balances {
		parts = append(parts, fmt.Sprintf("%.2f %s", b.Value, b.Currency))
	}
	return strings.Join(parts, ", ")
}
