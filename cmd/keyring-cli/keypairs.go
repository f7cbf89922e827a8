package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/solana-keyring/keyring/internal/keypair"
)

var tagsFlag = &cli.StringSliceFlag{
	Name:  "tag",
	Usage: "attach a tag (repeatable)",
}

var commandInit = &cli.Command{
	Name:  "init",
	Usage: "initialize the store with a master passphrase",
	Flags: []cli.Flag{passphraseFlag},
	Action: func(ctx *cli.Context) error {
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		pp, err := passphraseFrom(ctx)
		if err != nil {
			return err
		}
		if err := st.Initialize(pp); err != nil {
			return err
		}
		fmt.Println("store initialized")
		return nil
	},
}

var commandGenerate = &cli.Command{
	Name:      "generate",
	Usage:     "generate a new software keypair and store it under label",
	ArgsUsage: "<label>",
	Flags:     []cli.Flag{passphraseFlag, tagsFlag, jsonFlag},
	Action: func(ctx *cli.Context) error {
		label := ctx.Args().First()
		if label == "" {
			return fmt.Errorf("missing <label>")
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		pp, err := passphraseFrom(ctx)
		if err != nil {
			return err
		}

		kp, err := keypair.Generate()
		if err != nil {
			return err
		}
		defer kp.Close()

		pubkey, err := st.StoreKeypair(kp.Seed(), label, pp, ctx.StringSlice(tagsFlag.Name))
		if err != nil {
			return err
		}
		printResult(ctx, pubkey)
		return nil
	},
}

var commandImport = &cli.Command{
	Name:      "import",
	Usage:     "import a keypair from a JSON or base58 file and store it under label",
	ArgsUsage: "<file> <label>",
	Flags:     []cli.Flag{passphraseFlag, tagsFlag, jsonFlag},
	Action: func(ctx *cli.Context) error {
		file := ctx.Args().Get(0)
		label := ctx.Args().Get(1)
		if file == "" || label == "" {
			return fmt.Errorf("usage: import <file> <label>")
		}
		kp, err := loadKeypairFile(file)
		if err != nil {
			return err
		}
		defer kp.Close()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		pp, err := passphraseFrom(ctx)
		if err != nil {
			return err
		}
		pubkey, err := st.StoreKeypair(kp.Seed(), label, pp, ctx.StringSlice(tagsFlag.Name))
		if err != nil {
			return err
		}
		printResult(ctx, pubkey)
		return nil
	},
}

var commandExport = &cli.Command{
	Name:      "export",
	Usage:     "decrypt a stored keypair and write it to a JSON file",
	ArgsUsage: "<label-or-pubkey> <file>",
	Flags:     []cli.Flag{passphraseFlag},
	Action: func(ctx *cli.Context) error {
		ident := ctx.Args().Get(0)
		file := ctx.Args().Get(1)
		if ident == "" || file == "" {
			return fmt.Errorf("usage: export <label-or-pubkey> <file>")
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		pp, err := passphraseFrom(ctx)
		if err != nil {
			return err
		}
		seed, err := st.LoadKeypair(ident, pp)
		if err != nil {
			return err
		}
		defer seed.Close()

		kp, err := keypair.FromSeed(append([]byte(nil), seed.Bytes()...))
		if err != nil {
			return err
		}
		defer kp.Close()
		return writeKeypairFile(file, kp)
	},
}

var commandDelete = &cli.Command{
	Name:      "delete",
	Usage:     "delete a stored keypair",
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
		return st.DeleteKeypair(ident)
	},
}

var commandLabel = &cli.Command{
	Name:      "label",
	Usage:     "rename a stored keypair's label",
	ArgsUsage: "<label-or-pubkey> <new-label>",
	Action: func(ctx *cli.Context) error {
		ident := ctx.Args().Get(0)
		newLabel := ctx.Args().Get(1)
		if ident == "" || newLabel == "" {
			return fmt.Errorf("usage: label <label-or-pubkey> <new-label>")
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		return st.RenameKeypair(ident, newLabel)
	},
}

var commandList = &cli.Command{
	Name:  "list",
	Usage: "list stored keypairs",
	Flags: []cli.Flag{&cli.StringFlag{Name: "tag", Usage: "filter by tag"}, jsonFlag},
	Action: func(ctx *cli.Context) error {
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		var tag *string
		if v := ctx.String("tag"); v != "" {
			tag = &v
		}
		records, err := st.ListKeypairs(tag)
		if err != nil {
			return err
		}
		if ctx.Bool(jsonFlag.Name) {
			printResult(ctx, records)
			return nil
		}
		for _, r := range records {
			fmt.Printf("%-20s %s\n", r.Label, r.Pubkey)
		}
		return nil
	},
}

var commandTag = &cli.Command{
	Name:      "tag",
	Usage:     "add or remove a tag on a stored keypair",
	ArgsUsage: "<add|remove> <label-or-pubkey> <tag>",
	Action: func(ctx *cli.Context) error {
		op := ctx.Args().Get(0)
		ident := ctx.Args().Get(1)
		tag := ctx.Args().Get(2)
		if op == "" || ident == "" || tag == "" {
			return fmt.Errorf("usage: tag <add|remove> <label-or-pubkey> <tag>")
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		switch op {
		case "add":
			return st.AddKeypairTag(ident, tag)
		case "remove":
			return st.RemoveKeypairTag(ident, tag)
		default:
			return fmt.Errorf("unknown tag operation %q", op)
		}
	},
}
