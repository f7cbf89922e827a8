package rpcclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mr-tron/base58"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// HTTPClient is the production Client: a validator JSON-RPC endpoint
// reached over HTTP, covering only the three methods WalletTransport
// needs (spec §1's external-collaborator boundary — no balance/transfer
// surface belongs here).
type HTTPClient struct {
	url        string
	httpClient *http.Client
}

// NewHTTPClient builds an HTTPClient against a validator RPC endpoint.
func NewHTTPClient(url string) *HTTPClient {
	return &HTTPClient{url: url, httpClient: &http.Client{}}
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{Jsonrpc: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return keyringerr.Wrap(keyringerr.Rpc, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return keyringerr.Wrap(keyringerr.Rpc, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return keyringerr.Wrap(keyringerr.Rpc, "send request", err)
	}
	defer resp.Body.Close()

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return keyringerr.Wrap(keyringerr.Rpc, "decode response", err)
	}
	if parsed.Error != nil {
		return keyringerr.New(keyringerr.Rpc, fmt.Sprintf("rpc error %d: %s", parsed.Error.Code, parsed.Error.Message))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(parsed.Result, out); err != nil {
		return keyringerr.Wrap(keyringerr.Rpc, "decode result", err)
	}
	return nil
}

// GetLatestBlockhash calls getLatestBlockhash.
func (c *HTTPClient) GetLatestBlockhash(ctx context.Context) (Blockhash, error) {
	var result struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getLatestBlockhash", []interface{}{map[string]string{"commitment": "finalized"}}, &result); err != nil {
		return Blockhash{}, err
	}
	raw, err := base58.Decode(result.Value.Blockhash)
	if err != nil || len(raw) != 32 {
		return Blockhash{}, keyringerr.New(keyringerr.Rpc, "malformed blockhash in response")
	}
	var bh Blockhash
	copy(bh[:], raw)
	return bh, nil
}

// GetAccountData calls getAccountInfo and decodes the base64 account data.
func (c *HTTPClient) GetAccountData(ctx context.Context, pubkey [32]byte) ([]byte, error) {
	var result struct {
		Value *struct {
			Data []string `json:"data"`
		} `json:"value"`
	}
	params := []interface{}{
		base58.Encode(pubkey[:]),
		map[string]string{"encoding": "base64"},
	}
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil || len(result.Value.Data) == 0 {
		return nil, keyringerr.New(keyringerr.MultisigNotFound, "account not found: "+base58.Encode(pubkey[:]))
	}
	data, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, keyringerr.Wrap(keyringerr.InvalidAccountData, "decode account data", err)
	}
	return data, nil
}

// SendAndConfirm calls sendTransaction and polls getSignatureStatuses
// until the transaction is confirmed or the context is cancelled.
func (c *HTTPClient) SendAndConfirm(ctx context.Context, tx []byte) ([64]byte, error) {
	var sigB58 string
	params := []interface{}{
		base64.StdEncoding.EncodeToString(tx),
		map[string]string{"encoding": "base64"},
	}
	if err := c.call(ctx, "sendTransaction", params, &sigB58); err != nil {
		return [64]byte{}, err
	}
	raw, err := base58.Decode(sigB58)
	if err != nil || len(raw) != 64 {
		return [64]byte{}, keyringerr.New(keyringerr.Rpc, "malformed signature in response")
	}

	for {
		var statuses struct {
			Value []*struct {
				ConfirmationStatus string `json:"confirmationStatus"`
				Err                interface{}
			} `json:"value"`
		}
		if err := c.call(ctx, "getSignatureStatuses", []interface{}{[]string{sigB58}}, &statuses); err != nil {
			return [64]byte{}, err
		}
		if len(statuses.Value) == 1 && statuses.Value[0] != nil {
			st := statuses.Value[0]
			if st.Err != nil {
				return [64]byte{}, keyringerr.New(keyringerr.Rpc, "transaction failed on chain")
			}
			if st.ConfirmationStatus == "confirmed" || st.ConfirmationStatus == "finalized" {
				var sig [64]byte
				copy(sig[:], raw)
				return sig, nil
			}
		}
		select {
		case <-ctx.Done():
			return [64]byte{}, ctx.Err()
		case <-time.After(PollInterval):
		}
	}
}
