// Package router dispatches envelopes received from UI channels to the use cases
// and addresses the replies, broadcasts and forwards over the Bus.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/domain/models"
	"github.com/osmium-toolchains/osmium-cli/internal/observability/metrics"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

type routeKind int

const (
	// query replies to the requester with a collection
	kindQuery routeKind = iota
	// mutation changes state; the refresh arrives through the file watcher
	kindMutation
	// command runs detached and replies with a *_RESPONSE
	kindCommand
	// forward delivers a derived message to another surface
	kindForward
)

type handler func(ctx context.Context, env domain.Envelope) (any, error)

type route struct {
	kind   routeKind
	reply  domain.MessageType
	target string
	handle handler
}

// Router owns the dispatch table
type Router struct {
	log    *slog.Logger
	bus    *Bus
	routes map[domain.MessageType]route
	wg     sync.WaitGroup

	list           *usecase.ListResources
	wallets        *usecase.ManageWallets
	environments   *usecase.ManageEnvironments
	contracts      *usecase.ManageContracts
	deployScript   *usecase.DeployScript
	deployContract *usecase.DeployContract
	read           *usecase.ReadContract
	write          *usecase.WriteContract
	estimate       *usecase.EstimateGas
}

// NewRouter creates a router and builds its dispatch table
func NewRouter(
	bus *Bus,
	list *usecase.ListResources,
	wallets *usecase.ManageWallets,
	environments *usecase.ManageEnvironments,
	contracts *usecase.ManageContracts,
	deployScript *usecase.DeployScript,
	deployContract *usecase.DeployContract,
	read *usecase.ReadContract,
	write *usecase.WriteContract,
	estimate *usecase.EstimateGas,
	log *slog.Logger,
) *Router {
	r := &Router{
		log:            log.With("component", "Router"),
		bus:            bus,
		list:           list,
		wallets:        wallets,
		environments:   environments,
		contracts:      contracts,
		deployScript:   deployScript,
		deployContract: deployContract,
		read:           read,
		write:          write,
		estimate:       estimate,
	}
	r.routes = r.table()
	return r
}

func (r *Router) table() map[domain.MessageType]route {
	query := func(reply domain.MessageType, h handler) route {
		return route{kind: kindQuery, reply: reply, handle: h}
	}
	mutation := func(h handler) route {
		return route{kind: kindMutation, handle: h}
	}
	command := func(reply domain.MessageType, h handler) route {
		return route{kind: kindCommand, reply: reply, handle: h}
	}
	forward := func(target string, reply domain.MessageType, h handler) route {
		return route{kind: kindForward, target: target, reply: reply, handle: h}
	}

	return map[domain.MessageType]route{
		domain.GetWallets:           query(domain.Wallets, r.getWallets),
		domain.GetEnvironments:      query(domain.Environments, r.getEnvironments),
		domain.GetInteractContracts: query(domain.InteractContracts, r.getInteractContracts),
		domain.GetDeployContracts:   query(domain.DeployContracts, r.getDeployContracts),
		domain.GetScripts:           query(domain.Scripts, r.getScripts),

		domain.AddWallet:         mutation(r.addWallet),
		domain.EditWallet:        mutation(r.editWallet),
		domain.DeleteWallet:      mutation(r.deleteWallet),
		domain.AddContract:       mutation(r.addContract),
		domain.EditContract:      mutation(r.editContract),
		domain.DeleteContract:    mutation(r.deleteContract),
		domain.AddEnvironment:    mutation(r.addEnvironment),
		domain.EditEnvironment:   mutation(r.editEnvironment),
		domain.DeleteEnvironment: mutation(r.deleteEnvironment),

		domain.Write:          command(domain.WriteResponse, r.writeContract),
		domain.Read:           command(domain.ReadResponse, r.readContract),
		domain.DeployScript:   command(domain.DeployScriptResponse, r.runDeployScript),
		domain.DeployContract: command(domain.DeployContractResponse, r.runDeployContract),
		domain.EstimateGas:    command(domain.EstimateGasResponse, r.estimateGas),

		domain.OpenPanel:         forward(SurfacePanel, domain.OpenPanelResponse, openPanel),
		domain.OpenDocumentation: forward(SurfaceHost, domain.OpenDocumentation, passthrough),
		domain.OpenWalkthrough:   forward(SurfaceHost, domain.OpenWalkthrough, passthrough),
	}
}

// Bus returns the bus replies are addressed through
func (r *Router) Bus() *Bus {
	return r.bus
}

// Reply returns the type the requester is answered with for t. Mutations and
// forwards have no reply on success.
func (r *Router) Reply(t domain.MessageType) (domain.MessageType, bool) {
	rt, ok := r.routes[t]
	if !ok || (rt.kind != kindQuery && rt.kind != kindCommand) {
		return "", false
	}
	return rt.reply, true
}

// Dispatch handles one envelope received from the channel named from.
// Commands are started in the background and Dispatch returns immediately.
func (r *Router) Dispatch(ctx context.Context, from string, env domain.Envelope) {
	rt, ok := r.routes[env.Type]
	if !ok {
		metrics.Message(string(env.Type), false)
		r.log.Warn("unknown message type", "channel", from, "type", env.Type)
		r.replyError(ctx, from, env.Type, fmt.Errorf("%w: %q", domain.ErrUnknownMessage, env.Type))
		return
	}
	r.log.Debug("dispatching", "channel", from, "type", env.Type)

	switch rt.kind {
	case kindQuery:
		data, err := rt.handle(ctx, env)
		metrics.Message(string(env.Type), err == nil)
		if err != nil {
			r.replyError(ctx, from, env.Type, err)
			return
		}
		r.reply(ctx, from, rt.reply, data)

	case kindMutation:
		_, err := rt.handle(ctx, env)
		metrics.Message(string(env.Type), err == nil)
		if err != nil {
			r.log.Warn("mutation failed", "type", env.Type, "error", err)
			r.replyError(ctx, from, env.Type, err)
		}

	case kindCommand:
		metrics.Message(string(env.Type), true)
		// Issued commands are never cancelled, even when the requester goes away
		detached := context.WithoutCancel(ctx)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.runCommand(detached, from, env, rt)
		}()

	case kindForward:
		data, err := rt.handle(ctx, env)
		metrics.Message(string(env.Type), err == nil)
		if err != nil {
			r.replyError(ctx, from, env.Type, err)
			return
		}
		out, err := domain.NewEnvelope(rt.reply, data)
		if err != nil {
			r.replyError(ctx, from, env.Type, err)
			return
		}
		if err := r.bus.Forward(ctx, rt.target, out); err != nil {
			r.log.Warn("forward not delivered yet", "target", rt.target, "type", rt.reply, "error", err)
		}
	}
}

func (r *Router) runCommand(ctx context.Context, from string, env domain.Envelope, rt route) {
	start := time.Now()
	data, err := rt.handle(ctx, env)
	metrics.Command(string(env.Type), err == nil, time.Since(start))
	if err != nil {
		r.log.Debug("command failed", "type", env.Type, "error", err)
		data = domain.NewErrorPayload("", err)
	}
	r.reply(ctx, from, rt.reply, data)
}

// Wait blocks until every started command has replied
func (r *Router) Wait() {
	r.wg.Wait()
}

func (r *Router) reply(ctx context.Context, to string, t domain.MessageType, data any) {
	env, err := domain.NewEnvelope(t, data)
	if err != nil {
		r.log.Error("failed to encode reply", "type", t, "error", err)
		return
	}
	if err := r.bus.Send(ctx, to, env); err != nil {
		r.log.Warn("reply not delivered", "channel", to, "type", t, "error", err)
	}
}

func (r *Router) replyError(ctx context.Context, to string, request domain.MessageType, err error) {
	r.reply(ctx, to, domain.ErrorMessage, domain.NewErrorPayload(request, err))
}

// Queries

func (r *Router) getWallets(ctx context.Context, _ domain.Envelope) (any, error) {
	return r.list.Wallets(ctx), nil
}

func (r *Router) getEnvironments(ctx context.Context, _ domain.Envelope) (any, error) {
	return r.list.Environments(ctx), nil
}

func (r *Router) getInteractContracts(ctx context.Context, _ domain.Envelope) (any, error) {
	return r.list.InteractContracts(ctx), nil
}

func (r *Router) getDeployContracts(ctx context.Context, _ domain.Envelope) (any, error) {
	return r.list.DeployContracts(ctx), nil
}

func (r *Router) getScripts(ctx context.Context, _ domain.Envelope) (any, error) {
	return r.list.Scripts(ctx), nil
}

// Mutations

func (r *Router) addWallet(ctx context.Context, env domain.Envelope) (any, error) {
	var p usecase.AddWalletParams
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	return r.wallets.Add(ctx, p)
}

func (r *Router) editWallet(ctx context.Context, env domain.Envelope) (any, error) {
	var p editPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	update, err := models.ParseWalletUpdate(p.Field, p.Value)
	if err != nil {
		return nil, err
	}
	return nil, r.wallets.Edit(ctx, p.ID, update)
}

func (r *Router) deleteWallet(ctx context.Context, env domain.Envelope) (any, error) {
	var p idPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	return nil, r.wallets.Remove(ctx, p.ID)
}

func (r *Router) addContract(ctx context.Context, env domain.Envelope) (any, error) {
	var p addContractPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	chainID, err := p.ChainID.Uint("chainId")
	if err != nil {
		return nil, err
	}
	return r.contracts.Add(ctx, usecase.AddContractParams{
		Name:    p.Name,
		Address: p.Address,
		ABI:     p.ABI,
		ChainID: chainID,
		RPCURL:  p.RPCURL,
	})
}

func (r *Router) editContract(ctx context.Context, env domain.Envelope) (any, error) {
	var p editPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	update, err := models.ParseInteractContractUpdate(p.Field, p.Value)
	if err != nil {
		return nil, err
	}
	return nil, r.contracts.Edit(ctx, p.ID, update)
}

func (r *Router) deleteContract(ctx context.Context, env domain.Envelope) (any, error) {
	var p idPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	return nil, r.contracts.Remove(ctx, p.ID)
}

func (r *Router) addEnvironment(ctx context.Context, env domain.Envelope) (any, error) {
	var p usecase.AddEnvironmentParams
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	return r.environments.Add(ctx, p)
}

func (r *Router) editEnvironment(ctx context.Context, env domain.Envelope) (any, error) {
	var p editPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	update, err := models.ParseEnvironmentUpdate(p.Field, p.Value)
	if err != nil {
		return nil, err
	}
	return nil, r.environments.Edit(ctx, p.ID, update)
}

func (r *Router) deleteEnvironment(ctx context.Context, env domain.Envelope) (any, error) {
	var p idPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	return nil, r.environments.Remove(ctx, p.ID)
}

// Commands

func (r *Router) writeContract(ctx context.Context, env domain.Envelope) (any, error) {
	var p writePayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	gasLimit, err := p.GasLimit.Uint("gasLimit")
	if err != nil {
		return nil, err
	}
	return r.write.Run(ctx, usecase.WriteContractParams{
		ContractID: p.Contract,
		WalletID:   p.Wallet,
		Method:     p.Function,
		Params:     p.Inputs,
		GasLimit:   gasLimit,
		Value:      string(p.Value),
		ValueUnit:  p.ValueUnit,
	})
}

func (r *Router) readContract(ctx context.Context, env domain.Envelope) (any, error) {
	var p readPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	return r.read.Run(ctx, usecase.ReadContractParams{
		ContractID: p.Contract,
		Method:     p.Function,
		Params:     p.Inputs,
	})
}

func (r *Router) runDeployScript(ctx context.Context, env domain.Envelope) (any, error) {
	var p deployScriptPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	return r.deployScript.Run(ctx, usecase.DeployScriptParams{
		EnvironmentID: p.Environment,
		ScriptID:      p.Script,
		Verify:        p.Verify,
	})
}

func (r *Router) runDeployContract(ctx context.Context, env domain.Envelope) (any, error) {
	var p deployContractPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	gasLimit, err := p.GasLimit.Uint("gasLimit")
	if err != nil {
		return nil, err
	}
	return r.deployContract.Run(ctx, usecase.DeployContractParams{
		EnvironmentID: p.Environment,
		ContractID:    p.Contract,
		WalletID:      p.Wallet,
		GasLimit:      gasLimit,
		Value:         string(p.Value),
		ValueUnit:     p.ValueUnit,
		Params:        p.Inputs,
		Verify:        p.Verify,
	})
}

func (r *Router) estimateGas(ctx context.Context, env domain.Envelope) (any, error) {
	var p estimateGasPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	return r.estimate.Run(ctx, usecase.EstimateGasParams{
		ContractID:    p.Contract,
		Address:       p.Address,
		ABI:           p.ABI,
		Method:        p.Function,
		WalletAddress: p.WalletAddress,
		Params:        p.Params,
		RPCURL:        p.RPCURL,
	})
}

// Forwards

func openPanel(_ context.Context, env domain.Envelope) (any, error) {
	var p openPanelPayload
	if err := env.Decode(&p); err != nil {
		return nil, err
	}
	if len(p.ID) == 0 {
		return nil, fmt.Errorf("%w: OPEN_PANEL requires an id", domain.ErrInvalidPayload)
	}
	return p, nil
}

// passthrough forwards the request data unchanged
func passthrough(_ context.Context, env domain.Envelope) (any, error) {
	if len(env.Data) == 0 {
		return nil, nil
	}
	return env.Data, nil
}
