package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
)

// ExitCodeSpawnFailed is reported when the toolchain could not be started at all
const ExitCodeSpawnFailed = 127

// DeployResult is the recovered outcome of a toolchain run
type DeployResult struct {
	ExitCode int    `json:"exitCode"`
	Output   string `json:"output"`
}

// DeployScriptParams contains parameters for broadcasting a script
type DeployScriptParams struct {
	EnvironmentID string
	ScriptID      string
	Verify        bool
}

// DeployScript runs a forge deployment script against an environment
type DeployScript struct {
	environments EnvironmentRepository
	scripts      ScriptRepository
	forge        ForgeRunner
	sink         LogSink
	log          *slog.Logger
}

// NewDeployScript creates a new DeployScript use case
func NewDeployScript(
	environments EnvironmentRepository,
	scripts ScriptRepository,
	forge ForgeRunner,
	sink LogSink,
	log *slog.Logger,
) *DeployScript {
	return &DeployScript{
		environments: environments,
		scripts:      scripts,
		forge:        forge,
		sink:         sink,
		log:          log.With("component", "DeployScript"),
	}
}

// Run resolves references, then runs the script. Tool failures are returned as a result, not an error.
func (uc *DeployScript) Run(ctx context.Context, params DeployScriptParams) (*DeployResult, error) {
	env, ok := uc.environments.GetByID(params.EnvironmentID)
	if !ok {
		return nil, domain.NotFoundError{Kind: domain.KindEnvironment, ID: params.EnvironmentID}
	}
	script, ok := uc.scripts.GetByID(params.ScriptID)
	if !ok {
		return nil, domain.NotFoundError{Kind: domain.KindScript, ID: params.ScriptID}
	}

	uc.log.Info("deploying script", "script", script.Target(), "environment", env.Name, "verify", params.Verify)

	execution, err := uc.forge.Script(ctx, ScriptRun{
		Target: script.Target(),
		RPCURL: env.RPCURL,
		Verify: params.Verify,
	})
	return collect(execution, err, uc.sink, "deploy-script"), nil
}

// DeployContractParams contains parameters for creating a contract
type DeployContractParams struct {
	EnvironmentID string
	ContractID    string
	WalletID      string
	GasLimit      uint64
	Value         string
	ValueUnit     domain.Unit
	Params        []json.RawMessage
	Verify        bool
}

// DeployContract publishes a compiled contract with forge create
type DeployContract struct {
	environments EnvironmentRepository
	contracts    DeployContractRepository
	wallets      WalletRepository
	forge        ForgeRunner
	sink         LogSink
	log          *slog.Logger
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(
	environments EnvironmentRepository,
	contracts DeployContractRepository,
	wallets WalletRepository,
	forge ForgeRunner,
	sink LogSink,
	log *slog.Logger,
) *DeployContract {
	return &DeployContract{
		environments: environments,
		contracts:    contracts,
		wallets:      wallets,
		forge:        forge,
		sink:         sink,
		log:          log.With("component", "DeployContract"),
	}
}

// Run resolves references, converts the value to wei and runs forge create
func (uc *DeployContract) Run(ctx context.Context, params DeployContractParams) (*DeployResult, error) {
	env, ok := uc.environments.GetByID(params.EnvironmentID)
	if !ok {
		return nil, domain.NotFoundError{Kind: domain.KindEnvironment, ID: params.EnvironmentID}
	}
	contract, ok := uc.contracts.GetByID(params.ContractID)
	if !ok {
		return nil, domain.NotFoundError{Kind: domain.KindDeployContract, ID: params.ContractID}
	}
	wallet, ok := uc.wallets.GetByID(params.WalletID)
	if !ok {
		return nil, domain.NotFoundError{Kind: domain.KindWallet, ID: params.WalletID}
	}

	run := CreateRun{
		Target:     contract.Target(),
		RPCURL:     env.RPCURL,
		PrivateKey: wallet.PrivateKey,
		GasLimit:   params.GasLimit,
		Verify:     params.Verify,
	}
	if strings.TrimSpace(params.Value) != "" {
		value, err := domain.ToBaseUnits(params.Value, params.ValueUnit)
		if err != nil {
			return nil, err
		}
		if value.Sign() > 0 {
			run.Value = value
		}
	}
	for _, p := range params.Params {
		arg, err := FormatCLIArg(p)
		if err != nil {
			return nil, err
		}
		run.ConstructorArgs = append(run.ConstructorArgs, arg)
	}

	uc.log.Info("deploying contract", "contract", contract.Target(), "environment", env.Name, "wallet", wallet.Address)

	execution, err := uc.forge.Create(ctx, run)
	return collect(execution, err, uc.sink, "deploy-contract"), nil
}

// collect forwards every chunk to the sink in arrival order, then awaits completion
func collect(execution Execution, startErr error, sink LogSink, source string) *DeployResult {
	if startErr != nil {
		sink.Append(source, startErr.Error())
		return &DeployResult{ExitCode: ExitCodeSpawnFailed, Output: startErr.Error()}
	}

	for chunk := range execution.Chunks() {
		sink.Append(source, string(chunk.Data))
	}
	return toDeployResult(execution.Wait())
}

func toDeployResult(res ExecResult) *DeployResult {
	if res.ExitCode == 0 && res.Err == nil {
		return &DeployResult{ExitCode: 0, Output: res.Stdout}
	}

	code := res.ExitCode
	if code == 0 {
		code = 1
	}
	output := strings.TrimSpace(res.Stderr)
	if output == "" {
		output = strings.TrimSpace(res.Stdout)
	}
	if output == "" && res.Err != nil {
		output = res.Err.Error()
	}
	return &DeployResult{ExitCode: code, Output: output}
}

// FormatCLIArg renders a JSON value the way forge parses command line arguments
func FormatCLIArg(raw json.RawMessage) (string, error) {
	var v any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("%w: constructor argument: %v", domain.ErrInvalidPayload, err)
	}
	return formatCLIValue(v), nil
}

func formatCLIValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = formatCLIValue(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		out, _ := json.Marshal(val)
		return string(out)
	}
}
