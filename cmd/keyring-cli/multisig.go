package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/solana-keyring/keyring/internal/flags"
	"github.com/solana-keyring/keyring/internal/store"
)

var membersFlag = &cli.StringSliceFlag{
	Name:     "member",
	Usage:    "member as pubkey:permissions (repeatable)",
	Category: flags.MultisigCategory,
}

var commandMultisig = &cli.Command{
	Name:     "multisig",
	Usage:    "manage registered multisig vaults",
	Category: flags.MultisigCategory,
	Subcommands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "register a multisig vault",
			ArgsUsage: "<multisig-pubkey> <label> <vault-index> <threshold>",
			Flags:     []cli.Flag{membersFlag, tagsFlag},
			Action: func(ctx *cli.Context) error {
				if ctx.Args().Len() < 4 {
					return fmt.Errorf("usage: multisig add <multisig-pubkey> <label> <vault-index> <threshold>")
				}
				vaultIndex, err := strconv.ParseUint(ctx.Args().Get(2), 10, 8)
				if err != nil {
					return fmt.Errorf("invalid vault index: %w", err)
				}
				threshold, err := strconv.ParseUint(ctx.Args().Get(3), 10, 16)
				if err != nil {
					return fmt.Errorf("invalid threshold: %w", err)
				}
				members, err := parseMembers(ctx.StringSlice(membersFlag.Name))
				if err != nil {
					return err
				}

				st, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				return st.StoreMultisig(store.MultisigRecord{
					MultisigPubkey: ctx.Args().Get(0),
					Label:          ctx.Args().Get(1),
					VaultIndex:     uint8(vaultIndex),
					Threshold:      uint16(threshold),
					Members:        members,
				}, ctx.StringSlice(tagsFlag.Name))
			},
		},
		{
			Name:  "list",
			Usage: "list registered multisig vaults",
			Flags: []cli.Flag{jsonFlag},
			Action: func(ctx *cli.Context) error {
				st, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				records, err := st.ListMultisigs(nil)
				if err != nil {
					return err
				}
				if ctx.Bool(jsonFlag.Name) {
					printResult(ctx, records)
					return nil
				}
				for _, r := range records {
					fmt.Printf("%-20s %-48s threshold=%d members=%d\n",
						r.Label, r.MultisigPubkey, r.Threshold, len(r.Members))
				}
				return nil
			},
		},
		{
			Name:      "delete",
			Usage:     "delete a registered multisig vault",
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
				return st.DeleteMultisig(ident)
			},
		},
	},
}

func parseMembers(raw []string) ([]store.MultisigMember, error) {
	members := make([]store.MultisigMember, 0, len(raw))
	for _, entry := range raw {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --member %q, want pubkey:permissions", entry)
		}
		perms, err := strconv.ParseUint(parts[1], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid permissions in --member %q: %w", entry, err)
		}
		members = append(members, store.MultisigMember{MemberPubkey: parts[0], Permissions: uint8(perms)})
	}
	return members, nil
}
