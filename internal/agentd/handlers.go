package agentd

import (
	"encoding/base64"
	"encoding/json"

	"github.com/solana-keyring/keyring/internal/keypair"
	"github.com/solana-keyring/keyring/internal/keyringerr"
	"github.com/solana-keyring/keyring/internal/txsummary"
)

// dispatch routes one decoded request to its handler and always returns a
// well-formed Response, never an error: failures are carried inside the
// envelope per spec §4.2.
func (srv *Server) dispatch(req Request) Response {
	switch req.Method {
	case MethodPing:
		return ok("Pong")

	case MethodStatus:
		return srv.handleStatus()

	case MethodUnlock:
		return srv.handleUnlock(req.Params)

	case MethodLock:
		srv.state.lock()
		return ok(nil)

	case MethodListSigners:
		return srv.handleListSigners(req.Params)

	case MethodSignTransaction:
		return srv.handleSignTransaction(req.Params)

	case MethodShutdown:
		srv.requestShutdown()
		return ok(nil)

	default:
		return errResponse(keyringerr.New(keyringerr.InvalidFormat, "unknown method "+req.Method))
	}
}

func (srv *Server) handleStatus() Response {
	srv.state.checkIdle()
	records, err := srv.state.store.ListKeypairs(nil)
	if err != nil {
		return errResponse(err)
	}
	return ok(StatusResult{
		Unlocked:           srv.state.IsUnlocked(),
		UptimeSeconds:      int64(srv.state.uptime().Seconds()),
		LockTimeoutSeconds: int64(srv.state.lockTimeout.Seconds()),
		SignerCount:        len(records),
	})
}

func (srv *Server) handleUnlock(raw json.RawMessage) Response {
	var p UnlockParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return errResponse(keyringerr.Wrap(keyringerr.InvalidFormat, "decode Unlock params", err))
	}
	valid, err := srv.state.store.VerifyPassphrase([]byte(p.Passphrase))
	if err != nil {
		return errResponse(err)
	}
	if !valid {
		return errResponse(keyringerr.New(keyringerr.InvalidPassphrase, "incorrect passphrase"))
	}
	srv.state.unlock([]byte(p.Passphrase))
	return ok(nil)
}

func (srv *Server) handleListSigners(raw json.RawMessage) Response {
	var p ListSignersParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return errResponse(keyringerr.Wrap(keyringerr.InvalidFormat, "decode ListSigners params", err))
		}
	}
	records, err := srv.state.store.ListKeypairs(p.Tag)
	if err != nil {
		return errResponse(err)
	}
	infos := make([]SignerInfo, len(records))
	for i, r := range records {
		infos[i] = SignerInfo{Label: r.Label, Pubkey: r.Pubkey}
	}
	return ok(infos)
}

func (srv *Server) handleSignTransaction(raw json.RawMessage) Response {
	var p SignTransactionParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return errResponse(keyringerr.Wrap(keyringerr.InvalidFormat, "decode SignTransaction params", err))
	}
	message, err := base64.StdEncoding.DecodeString(p.Transaction)
	if err != nil {
		return errResponse(keyringerr.Wrap(keyringerr.InvalidTransaction, "decode base64 transaction", err))
	}

	summary, err := srv.summarizer.Summarize(message)
	if err != nil {
		return errResponse(keyringerr.Wrap(keyringerr.InvalidTransaction, "summarize transaction", err))
	}
	approved, err := srv.confirmer.Confirm(srv.ctx, txsummary.Confirm(summary))
	if err != nil {
		return errResponse(keyringerr.Wrap(keyringerr.Internal, "confirmation prompt failed", err))
	}
	if !approved {
		return errResponse(keyringerr.New(keyringerr.UserCancelled, "signing confirmation denied"))
	}

	var sigB64 string
	err = srv.state.withPassphrase(func(passphrase []byte) error {
		seed, err := srv.state.store.LoadKeypair(p.Signer, passphrase)
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
		sigB64 = base64.StdEncoding.EncodeToString(sig[:])
		return nil
	})
	if err != nil {
		return errResponse(err)
	}
	return ok(sigB64)
}

func ok(result interface{}) Response {
	return Response{Status: "ok", Result: result}
}

func errResponse(err error) Response {
	code := keyringerr.CodeOf(err)
	return Response{Status: "error", Code: string(code), Message: err.Error()}
}
