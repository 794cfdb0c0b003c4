package domain

import (
	"encoding/json"
	"fmt"
)

// MessageType is the tag of a protocol envelope
type MessageType string

// Requests issued by UI channels
const (
	GetWallets           MessageType = "GET_WALLETS"
	GetEnvironments      MessageType = "GET_ENVIRONMENTS"
	GetInteractContracts MessageType = "GET_INTERACT_CONTRACTS"
	GetDeployContracts   MessageType = "GET_DEPLOY_CONTRACTS"
	GetScripts           MessageType = "GET_SCRIPTS"

	AddWallet    MessageType = "ADD_WALLET"
	EditWallet   MessageType = "EDIT_WALLET"
	DeleteWallet MessageType = "DELETE_WALLET"

	AddContract    MessageType = "ADD_CONTRACT"
	EditContract   MessageType = "EDIT_CONTRACT"
	DeleteContract MessageType = "DELETE_CONTRACT"

	AddEnvironment    MessageType = "ADD_ENVIRONMENT"
	EditEnvironment   MessageType = "EDIT_ENVIRONMENT"
	DeleteEnvironment MessageType = "DELETE_ENVIRONMENT"

	Write          MessageType = "WRITE"
	Read           MessageType = "READ"
	DeployScript   MessageType = "DEPLOY_SCRIPT"
	DeployContract MessageType = "DEPLOY_CONTRACT"
	EstimateGas    MessageType = "ESTIMATE_GAS"

	OpenPanel         MessageType = "OPEN_PANEL"
	OpenDocumentation MessageType = "OPEN_DOCUMENTATION"
	OpenWalkthrough   MessageType = "OPEN_WALKTHROUGH"
)

// Responses and broadcasts emitted by the backend
const (
	Wallets           MessageType = "WALLETS"
	Environments      MessageType = "ENVIRONMENTS"
	InteractContracts MessageType = "INTERACT_CONTRACTS"
	DeployContracts   MessageType = "DEPLOY_CONTRACTS"
	Scripts           MessageType = "SCRIPTS"

	WriteResponse          MessageType = "WRITE_RESPONSE"
	ReadResponse           MessageType = "READ_RESPONSE"
	DeployScriptResponse   MessageType = "DEPLOY_SCRIPT_RESPONSE"
	DeployContractResponse MessageType = "DEPLOY_CONTRACT_RESPONSE"
	EstimateGasResponse    MessageType = "ESTIMATE_GAS_RESPONSE"
	OpenPanelResponse      MessageType = "OPEN_PANEL_RESPONSE"

	Log          MessageType = "LOG"
	ShowSurface  MessageType = "SHOW_SURFACE"
	ErrorMessage MessageType = "ERROR"
)

// Envelope is the unit exchanged over a UI channel
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an envelope of the given type
func NewEnvelope(t MessageType, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Type: t}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	return Envelope{Type: t, Data: raw}, nil
}

// Decode unmarshals the envelope data into v
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: %s has no data", ErrInvalidPayload, e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, e.Type, err)
	}
	return nil
}

// ErrorPayload is the body of failed command responses and ERROR messages
type ErrorPayload struct {
	Request MessageType `json:"request,omitempty"`
	Error   string      `json:"error"`
	Code    string      `json:"code"`
}

// NewErrorPayload builds an ErrorPayload for err
func NewErrorPayload(request MessageType, err error) ErrorPayload {
	return ErrorPayload{
		Request: request,
		Error:   err.Error(),
		Code:    ErrorCode(err),
	}
}

// LogPayload carries one chunk of command output
type LogPayload struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}
