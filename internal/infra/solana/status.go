package solana

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/client"

	"launchpad/internal/application/usecase"
)

var (
	ErrStatusReaderNotConfigured = errors.New("status_reader: not configured")
	ErrStatusSignatureEmpty      = errors.New("status_reader: tx signature is empty")
)

// StatusReader implements usecase.TransactionStatusQuery via
// getSignatureStatuses.
type StatusReader struct {
	RPC *client.Client
}

var _ usecase.TransactionStatusQuery = (*StatusReader)(nil)

func NewStatusReader(rpc *client.Client) *StatusReader {
	return &StatusReader{RPC: rpc}
}

// Status maps the network's view of one signature:
//   - unknown / still confirming -> pending
//   - finalized-or-confirmed without error -> settled-ok
//   - settled with a transaction error -> settled-error(code)
func (r *StatusReader) Status(ctx context.Context, txSignature string) (usecase.TxStatus, error) {
	if r == nil || r.RPC == nil {
		return usecase.TxStatus{}, ErrStatusReaderNotConfigured
	}
	sig := strings.TrimSpace(txSignature)
	if sig == "" {
		return usecase.TxStatus{}, ErrStatusSignatureEmpty
	}

	st, err := r.RPC.GetSignatureStatus(ctx, sig)
	if err != nil {
		return usecase.TxStatus{}, fmt.Errorf("status_reader: GetSignatureStatus: %w", err)
	}
	if st == nil {
		// the cluster has not observed the signature (yet)
		return usecase.TxStatus{State: usecase.TxPending}, nil
	}

	if st.Err != nil {
		code, ok := extractCustomErrorCode(st.Err)
		if !ok {
			code = -1
		}
		return usecase.TxStatus{
			State:      usecase.TxSettledErr,
			ErrCode:    code,
			ErrMessage: fmt.Sprintf("%v", st.Err),
		}, nil
	}

	if st.ConfirmationStatus == nil {
		return usecase.TxStatus{State: usecase.TxPending}, nil
	}
	switch *st.ConfirmationStatus {
	case "confirmed", "finalized":
		return usecase.TxStatus{State: usecase.TxSettledOK}, nil
	}
	return usecase.TxStatus{State: usecase.TxPending}, nil
}

// extractCustomErrorCode digs the program's custom error code out of the
// JSON-decoded transaction error, which arrives shaped like
//
//	{"InstructionError": [0, {"Custom": 311}]}
func extractCustomErrorCode(errVal any) (int64, bool) {
	m, ok := errVal.(map[string]any)
	if !ok {
		return 0, false
	}
	ie, ok := m["InstructionError"]
	if !ok {
		return 0, false
	}
	parts, ok := ie.([]any)
	if !ok || len(parts) < 2 {
		return 0, false
	}
	inner, ok := parts[1].(map[string]any)
	if !ok {
		return 0, false
	}
	custom, ok := inner["Custom"]
	if !ok {
		return 0, false
	}
	switch n := custom.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}
