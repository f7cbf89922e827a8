// Command cred-helper is the credential helper (spec §1, §4/C8): it
// accepts a serialized transaction message and a signer identifier, and
// produces a signature by forwarding to a reachable unlocked agent or, if
// none is available, opening the store directly and signing with the
// chosen actor.
package main

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/solana-keyring/keyring/internal/agentd"
	"github.com/solana-keyring/keyring/internal/flags"
	"github.com/solana-keyring/keyring/internal/hardware"
	"github.com/solana-keyring/keyring/internal/keypair"
	"github.com/solana-keyring/keyring/internal/keyringerr"
	"github.com/solana-keyring/keyring/internal/multisig"
	"github.com/solana-keyring/keyring/internal/rpcclient"
	"github.com/solana-keyring/keyring/internal/store"
)

var gitCommit = ""
var gitDate = ""

var (
	pubkeyFlag = &cli.StringFlag{
		Name:     "public-key",
		Usage:    "base58 public key of the signer",
		Required: true,
		Category: flags.ActorCategory,
	}
	signerTypeFlag = &cli.StringFlag{
		Name:     "signer-type",
		Usage:    "one of keypair, hardware, multisig",
		Value:    "keypair",
		Category: flags.ActorCategory,
	}
	multisigAddressFlag = &cli.StringFlag{
		Name:     "multisig-address",
		Usage:    "base58 multisig address (required iff signer-type=multisig)",
		Category: flags.MultisigCategory,
	}
	rpcURLFlag = &cli.StringFlag{
		Name:     "rpc-url",
		Usage:    "network RPC endpoint (required iff signer-type=multisig)",
		Category: flags.MultisigCategory,
	}
	useAgentFlag = &cli.BoolFlag{
		Name:     "use-agent",
		Usage:    "try a reachable unlock agent before opening the store directly",
		Value:    true,
		Category: flags.AgentCategory,
	}
	agentSocketFlag = &cli.StringFlag{
		Name:     "agent-socket",
		Usage:    "path to the agent's Unix socket",
		Category: flags.AgentCategory,
	}
	dbPathFlag = &cli.StringFlag{
		Name:     "db",
		Usage:    "path to the keyring database, used when the agent is unreachable",
		Category: flags.StoreCategory,
	}
	passphraseFlag = &cli.StringFlag{
		Name:     "passphrase",
		Usage:    "master passphrase for direct store access (reads stdin if omitted)",
		Category: flags.StoreCategory,
	}
)

func main() {
	app := flags.NewApp(gitCommit, gitDate, "signs a serialized transaction message with a chosen actor")
	app.Flags = []cli.Flag{
		pubkeyFlag, signerTypeFlag, multisigAddressFlag, rpcURLFlag,
		useAgentFlag, agentSocketFlag, dbPathFlag, passphraseFlag,
	}
	app.ArgsUsage = "<base64-transaction>"
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	txB64 := ctx.Args().First()
	if txB64 == "" {
		return fmt.Errorf("missing <base64-transaction>")
	}
	if _, err := base64.StdEncoding.DecodeString(txB64); err != nil {
		return fmt.Errorf("invalid base64 transaction: %w", err)
	}

	signer := ctx.String(signerTypeFlag.Name)
	if signer == "multisig" && (ctx.String(multisigAddressFlag.Name) == "" || ctx.String(rpcURLFlag.Name) == "") {
		return fmt.Errorf("--multisig-address and --rpc-url are required when --signer-type=multisig")
	}

	if ctx.Bool(useAgentFlag.Name) {
		sig, err := trySignViaAgent(ctx, txB64)
		if err == nil {
			fmt.Println(sig)
			return nil
		}
		// Any agent-reachability or lock-state failure falls through to
		// direct store access (spec §4 "Control flow for a typical sign").
	}
	return signDirect(ctx, txB64)
}

func trySignViaAgent(ctx *cli.Context, txB64 string) (string, error) {
	socketPath := ctx.String(agentSocketFlag.Name)
	if socketPath == "" {
		var err error
		socketPath, err = defaultSocketPath()
		if err != nil {
			return "", err
		}
	}
	client := agentd.NewClient(socketPath, 3*time.Second)

	var status agentd.StatusResult
	if err := client.Call(agentd.MethodStatus, nil, &status); err != nil {
		return "", err
	}
	if !status.Unlocked {
		return "", fmt.Errorf("agent is locked")
	}

	var sig string
	err := client.Call(agentd.MethodSignTransaction, agentd.SignTransactionParams{
		Transaction: txB64,
		Signer:      ctx.String(pubkeyFlag.Name),
	}, &sig)
	return sig, err
}

func signDirect(ctx *cli.Context, txB64 string) error {
	message, err := base64.StdEncoding.DecodeString(txB64)
	if err != nil {
		return err
	}

	switch ctx.String(signerTypeFlag.Name) {
	case "keypair":
		return signDirectKeypair(ctx, message)
	case "hardware":
		return signDirectHardware(ctx, message)
	case "multisig":
		return signDirectMultisig(ctx, message)
	default:
		return fmt.Errorf("unknown signer-type %q", ctx.String(signerTypeFlag.Name))
	}
}

func openDBStore(ctx *cli.Context) (*store.Store, error) {
	dbPath := ctx.String(dbPathFlag.Name)
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(home, ".solana-keyring", "keyring.db")
	}
	return store.Open(dbPath, zerolog.Nop())
}

// signDirectHardware looks up the registered Ledger-style wallet matching
// the requested public key, opens the attached device on its derivation
// path, and signs on-device (spec §4.4, C5). Mirrors sign_with_ledger in
// the original implementation, which resolves the wallet the same way
// before connecting.
func signDirectHardware(ctx *cli.Context, message []byte) error {
	st, err := openDBStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	wanted := ctx.String(pubkeyFlag.Name)
	wallets, err := st.ListHardwareWallets(nil)
	if err != nil {
		return err
	}
	var wallet *store.HardwareRecord
	for i := range wallets {
		if wallets[i].Pubkey == wanted || wallets[i].Label == wanted {
			wallet = &wallets[i]
			break
		}
	}
	if wallet == nil {
		return keyringerr.New(keyringerr.DeviceNotFound, "no registered hardware wallet matches "+wanted)
	}

	path, err := hardware.ParseDerivationPath(wallet.DerivationPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "connecting to hardware device...")
	fmt.Fprintln(os.Stderr, "please confirm the transaction on your device")
	signer, err := hardware.Open(path)
	if err != nil {
		return err
	}
	defer signer.Close()

	sig, err := signer.SignTransaction(message)
	if err != nil {
		return err
	}
	fmt.Println(base64.StdEncoding.EncodeToString(sig[:]))
	return nil
}

// signDirectMultisig loads the member keypair and the registered vault,
// then runs the propose/approve/(execute) sequence over the network RPC
// endpoint (spec §4.5, C6). Mirrors sign_with_squads in the original
// implementation: create a proposal for the member, approve it, and only
// a completed execution yields a real signature.
func signDirectMultisig(ctx *cli.Context, message []byte) error {
	st, err := openDBStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	multisigs, err := st.ListMultisigs(nil)
	if err != nil {
		return err
	}
	wanted := ctx.String(multisigAddressFlag.Name)
	var vault *store.MultisigRecord
	for i := range multisigs {
		if multisigs[i].MultisigPubkey == wanted || multisigs[i].Label == wanted {
			vault = &multisigs[i]
			break
		}
	}
	if vault == nil {
		return keyringerr.New(keyringerr.MultisigNotFound, "no registered multisig matches "+wanted)
	}
	multisigPubkey, err := decodePubkey(vault.MultisigPubkey)
	if err != nil {
		return err
	}

	pp, err := passphraseFrom(ctx)
	if err != nil {
		return err
	}
	seed, err := st.LoadKeypair(ctx.String(pubkeyFlag.Name), pp)
	if err != nil {
		return err
	}
	defer seed.Close()
	member, err := keypair.FromSeed(append([]byte(nil), seed.Bytes()...))
	if err != nil {
		return err
	}
	defer member.Close()

	fmt.Fprintf(os.Stderr, "creating proposal against multisig %s (vault index %d)\n", vault.MultisigPubkey, vault.VaultIndex)
	rpc := rpcclient.NewHTTPClient(ctx.String(rpcURLFlag.Name))
	transport := multisig.NewTransport(rpc, member, multisigPubkey, vault.VaultIndex)

	result, err := transport.Submit(ctx.Context, message)
	if err != nil {
		return err
	}
	if sig, ok := result.Sig(); ok {
		fmt.Println(base64.StdEncoding.EncodeToString(sig[:]))
		return nil
	}
	// Threshold not yet met: the vault PDA, not this member, will sign
	// once enough approvals land. There is no signature to return yet.
	fmt.Fprintf(os.Stderr, "proposal pending: %d/%d approvals\n", result.Approvals, result.Threshold)
	fmt.Println(base64.StdEncoding.EncodeToString(make([]byte, 64)))
	return nil
}

func decodePubkey(b58 string) ([32]byte, error) {
	pub, err := keypair.DecodePublicKeyBase58(b58)
	if err != nil {
		return [32]byte{}, err
	}
	return [32]byte(pub), nil
}

func signDirectKeypair(ctx *cli.Context, message []byte) error {
	st, err := openDBStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	pp, err := passphraseFrom(ctx)
	if err != nil {
		return err
	}
	seed, err := st.LoadKeypair(ctx.String(pubkeyFlag.Name), pp)
	if err != nil {
		return err
	}
	defer seed.Close()

	kp, err := keypair.FromSeed(append([]byte(nil), seed.Bytes()...))
	if err != nil {
		return err
	}
	defer kp.Close()

	sig, err := kp.SignTransaction(message)
	if err != nil {
		return err
	}
	fmt.Println(base64.StdEncoding.EncodeToString(sig[:]))
	return nil
}

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

func defaultSocketPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".solana-keyring", "agent.sock"), nil
}
