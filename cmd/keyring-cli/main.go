package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/solana-keyring/keyring/internal/flags"
	"github.com/solana-keyring/keyring/internal/store"
)

var gitCommit = ""
var gitDate = ""

var app *cli.App

var (
	dbPathFlag = &cli.StringFlag{
		Name:     "db",
		Usage:    "path to the keyring database",
		Category: flags.StoreCategory,
	}
	passphraseFlag = &cli.StringFlag{
		Name:     "passphrase",
		Usage:    "master passphrase (reads a line from stdin if omitted)",
		Category: flags.StoreCategory,
	}
	jsonFlag = &cli.BoolFlag{
		Name:     "json",
		Usage:    "output JSON instead of human-readable format",
		Category: flags.MiscCategory,
	}
	verboseFlag = &cli.BoolFlag{
		Name:     "verbose",
		Usage:    "enable debug logging",
		Category: flags.LoggingCategory,
	}
)

func init() {
	app = flags.NewApp(gitCommit, gitDate, "a local credential and signing service for software keypairs, hardware wallets and multisig vaults")
	app.Flags = []cli.Flag{dbPathFlag, verboseFlag}
	app.Commands = []*cli.Command{
		commandInit,
		commandGenerate,
		commandImport,
		commandExport,
		commandDelete,
		commandLabel,
		commandList,
		commandTag,
		commandAddress,
		commandMultisig,
		commandAgent,
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logger(ctx *cli.Context) zerolog.Logger {
	level := zerolog.InfoLevel
	if ctx.Bool(verboseFlag.Name) {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func dbPath(ctx *cli.Context) (string, error) {
	if p := ctx.String(dbPathFlag.Name); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".solana-keyring", "keyring.db"), nil
}

func openStore(ctx *cli.Context) (*store.Store, error) {
	path, err := dbPath(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return store.Open(path, logger(ctx))
}

// passphraseFrom returns the configured passphrase, reading one line from
// stdin when --passphrase is not set. Terminal password prompting is an
// external collaborator this binary does not implement (spec §1
// Non-goals); scripted callers pipe the passphrase in.
func passphraseFrom(ctx *cli.Context) ([]byte, error) {
	if p := ctx.String(passphraseFlag.Name); p != "" {
		return []byte(p), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("no passphrase provided: pass --passphrase or pipe one line on stdin")
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func printResult(ctx *cli.Context, v interface{}) {
	if ctx.Bool(jsonFlag.Name) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(v)
		return
	}
	fmt.Println(v)
}
