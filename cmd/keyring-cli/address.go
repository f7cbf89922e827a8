package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var commandAddress = &cli.Command{
	Name:  "address",
	Usage: "manage the address book",
	Subcommands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "add an address-book entry",
			ArgsUsage: "<pubkey> <label> [notes]",
			Action: func(ctx *cli.Context) error {
				pubkey := ctx.Args().Get(0)
				label := ctx.Args().Get(1)
				notes := ctx.Args().Get(2)
				if pubkey == "" || label == "" {
					return fmt.Errorf("usage: address add <pubkey> <label> [notes]")
				}
				st, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				return st.AddAddress(pubkey, label, notes)
			},
		},
		{
			Name:  "list",
			Usage: "list address-book entries",
			Flags: []cli.Flag{jsonFlag},
			Action: func(ctx *cli.Context) error {
				st, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				entries, err := st.ListAddresses()
				if err != nil {
					return err
				}
				if ctx.Bool(jsonFlag.Name) {
					printResult(ctx, entries)
					return nil
				}
				for _, e := range entries {
					fmt.Printf("%-20s %-48s %s\n", e.Label, e.Pubkey, e.Notes)
				}
				return nil
			},
		},
		{
			Name:      "delete",
			Usage:     "delete an address-book entry",
			ArgsUsage: "<label-or-pubkey>",
			Action: func(ctx *cli.Context) error {
				ident := ctx.Args().First()
				if ident == "" {
					return fmt.Errorf("missing <label-or-pubkey>")
				}
				st, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				return st.DeleteAddress(ident)
			},
		},
	},
}
