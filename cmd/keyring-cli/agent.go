package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/solana-keyring/keyring/internal/agentd"
	"github.com/solana-keyring/keyring/internal/flags"
)

var agentSocketFlag = &cli.StringFlag{
	Name:     "socket",
	Usage:    "path to the agent's Unix socket",
	Category: flags.AgentCategory,
}

func defaultSocketPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".solana-keyring", "agent.sock"), nil
}

func agentClient(ctx *cli.Context) (*agentd.Client, error) {
	path := ctx.String(agentSocketFlag.Name)
	if path == "" {
		var err error
		path, err = defaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return agentd.NewClient(path, 5*time.Second), nil
}

var commandAgent = &cli.Command{
	Name:     "agent",
	Usage:    "talk to the running unlock agent",
	Category: flags.AgentCategory,
	Flags:    []cli.Flag{agentSocketFlag},
	Subcommands: []*cli.Command{
		{
			Name:  "status",
			Usage: "report whether the agent is unlocked",
			Flags: []cli.Flag{jsonFlag},
			Action: func(ctx *cli.Context) error {
				client, err := agentClient(ctx)
				if err != nil {
					return err
				}
				var status agentd.StatusResult
				if err := client.Call(agentd.MethodStatus, nil, &status); err != nil {
					return err
				}
				printResult(ctx, status)
				return nil
			},
		},
		{
			Name:  "unlock",
			Usage: "unlock the agent with the master passphrase",
			Flags: []cli.Flag{passphraseFlag},
			Action: func(ctx *cli.Context) error {
				client, err := agentClient(ctx)
				if err != nil {
					return err
				}
				pp, err := passphraseFrom(ctx)
				if err != nil {
					return err
				}
				if err := client.Call(agentd.MethodUnlock, agentd.UnlockParams{Passphrase: string(pp)}, nil); err != nil {
					return err
				}
				fmt.Println("unlocked")
				return nil
			},
		},
		{
			Name:  "lock",
			Usage: "lock the agent, clearing the cached passphrase",
			Action: func(ctx *cli.Context) error {
				client, err := agentClient(ctx)
				if err != nil {
					return err
				}
				if err := client.Call(agentd.MethodLock, nil, nil); err != nil {
					return err
				}
				fmt.Println("locked")
				return nil
			},
		},
		{
			Name:  "sign",
			Usage: "ask the agent to sign a base64-encoded transaction message",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "signer", Usage: "label or pubkey of the signer", Required: true},
			},
			ArgsUsage: "<base64-transaction>",
			Action: func(ctx *cli.Context) error {
				tx := ctx.Args().First()
				if tx == "" {
					return fmt.Errorf("missing <base64-transaction>")
				}
				client, err := agentClient(ctx)
				if err != nil {
					return err
				}
				var sig string
				err = client.Call(agentd.MethodSignTransaction, agentd.SignTransactionParams{
					Transaction: tx,
					Signer:      ctx.String("signer"),
				}, &sig)
				if err != nil {
					return err
				}
				fmt.Println(sig)
				return nil
			},
		},
		{
			Name:  "shutdown",
			Usage: "ask the agent to exit",
			Action: func(ctx *cli.Context) error {
				client, err := agentClient(ctx)
				if err != nil {
					return err
				}
				return client.Call(agentd.MethodShutdown, nil, nil)
			},
		},
	},
}
