// Command keyring-agent runs the long-lived unlock agent (spec §4.2, C7):
// it owns the encrypted store and the master passphrase cache behind a
// Unix-socket JSON-RPC surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/solana-keyring/keyring/internal/agentd"
	"github.com/solana-keyring/keyring/internal/flags"
	"github.com/solana-keyring/keyring/internal/store"
)

var gitCommit = ""
var gitDate = ""

var (
	dbPathFlag = &cli.StringFlag{
		Name:     "db",
		Usage:    "path to the keyring database",
		Category: flags.StoreCategory,
	}
	socketFlag = &cli.StringFlag{
		Name:     "socket",
		Usage:    "path to the Unix socket the agent listens on",
		Category: flags.AgentCategory,
	}
	lockTimeoutFlag = &cli.DurationFlag{
		Name:     "lock-timeout",
		Usage:    "how long the passphrase stays cached after the last unlock",
		Value:    15 * time.Minute,
		Category: flags.AgentCategory,
	}
	verboseFlag = &cli.BoolFlag{
		Name:     "verbose",
		Usage:    "enable debug logging",
		Category: flags.LoggingCategory,
	}
)

func main() {
	app := flags.NewApp(gitCommit, gitDate, "the solana-keyring unlock agent")
	app.Flags = []cli.Flag{dbPathFlag, socketFlag, lockTimeoutFlag, verboseFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	level := zerolog.InfoLevel
	if ctx.Bool(verboseFlag.Name) {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	dbPath, err := resolvePath(ctx.String(dbPathFlag.Name), "keyring.db")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return err
	}
	st, err := store.Open(dbPath, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	initialized, err := st.IsInitialized()
	if err != nil {
		return err
	}
	if !initialized {
		return fmt.Errorf("store at %s is not initialized; run keyring-cli init first", dbPath)
	}

	socketPath, err := resolvePath(ctx.String(socketFlag.Name), "agent.sock")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		return err
	}

	srv := agentd.NewServer(st, agentd.Config{
		SocketPath:  socketPath,
		LockTimeout: ctx.Duration(lockTimeoutFlag.Name),
		Log:         log,
	})

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("socket", socketPath).Str("db", dbPath).Msg("agent listening")
	if err := srv.Serve(sigCtx); err != nil {
		return err
	}
	log.Info().Msg("agent stopped")
	return nil
}

func resolvePath(configured, filename string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".solana-keyring", filename), nil
}
