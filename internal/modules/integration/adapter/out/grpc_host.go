package out

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	integrationrpc "biochar/internal/modules/integration/adapter/out/rpc"
	"biochar/internal/modules/integration/domain"
	integrationout "biochar/internal/modules/integration/port/out"
	"biochar/internal/platform/logging"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost launches an integration binary per call and talks to it over
// go-plugin's gRPC transport.
type GRPCHost struct {
	logger hclog.Logger
}

func NewGRPCHost(logger hclog.Logger) integrationout.Host {
	return &GRPCHost{logger: logging.OrNull(logger).Named("integration")}
}

func (h *GRPCHost) Describe(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.Describe(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("describe: %w", err)
	}
	events := make([]domain.EventKind, 0, len(meta.Events))
	for _, e := range meta.Events {
		events = append(events, domain.EventKind(e))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Events: events}, nil
}

func (h *GRPCHost) Deliver(ctx context.Context, manifest domain.Manifest, event domain.Event) (domain.Receipt, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return domain.Receipt{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	response, err := client.Deliver(callCtx, toRequest(event))
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return domain.Receipt{}, fmt.Errorf("%w: %s", domain.ErrDeliveryTimeout, manifest.Name)
		}
		return domain.Receipt{}, fmt.Errorf("deliver %s: %w", event.Kind, err)
	}
	h.logger.Debug("event delivered", "integration", manifest.Name, "kind", string(event.Kind), "accepted", response.Accepted, "reference", response.Reference)
	return domain.Receipt{Accepted: response.Accepted, Reference: response.Reference, Message: response.Message}, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest, startTimeout time.Duration) (integrationrpc.IntegrationClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  integrationrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          integrationrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           h.logger.Named(manifest.Name),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start integration client: %w", err)
	}
	raw, err := rpcClient.Dispense(integrationrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense integration: %w", err)
	}
	typed, ok := raw.(integrationrpc.IntegrationClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("integration rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func toRequest(event domain.Event) *integrationrpc.DeliverRequest {
	b := event.Batch
	req := &integrationrpc.DeliverRequest{
		Kind: string(event.Kind),
		At:   event.At.UTC().Format(time.RFC3339),
		Batch: integrationrpc.Batch{
			ID:             b.ID,
			CoordinatorID:  b.CoordinatorID,
			KilnID:         b.KilnID,
			BiomassTypeID:  b.BiomassTypeID,
			Status:         b.Status,
			StartTime:      b.StartTime.UTC().Format(time.RFC3339),
			InputQuantity:  b.InputQuantity,
			OutputQuantity: b.OutputQuantity,
			PhotoRef:       b.PhotoRef,
		},
	}
	if !b.EndTime.IsZero() {
		req.Batch.EndTime = b.EndTime.UTC().Format(time.RFC3339)
	}
	return req
}
