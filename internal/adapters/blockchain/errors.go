package blockchain

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// CallError carries the short, user facing reason of a failed chain interaction
type CallError struct {
	Reason string
	Err    error
}

func (e *CallError) Error() string { return e.Reason }

func (e *CallError) Unwrap() error { return e.Err }

func newCallError(err error) error {
	if err == nil {
		return nil
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return err
	}
	return &CallError{Reason: ShortMessage(err), Err: err}
}

// ShortMessage reduces a client, network or revert error to one line.
// Revert data returned by the node is decoded when it holds an Error(string).
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if s, ok := dataErr.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(s); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return "execution reverted: " + reason
				}
			}
		}
	}

	msg := extractRevertReason(err.Error())
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}

func extractRevertReason(errMsg string) string {
	if idx := strings.Index(errMsg, "execution reverted"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx:])
	}
	if idx := strings.Index(errMsg, "revert"); idx >= 0 {
		return strings.TrimSpace(errMsg[idx:])
	}
	return errMsg
}
