// Command registry is the reference integration plugin. It issues a
// carbon-removal certificate id for every completed batch.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hashicorp/go-plugin"

	integrationrpc "biochar/internal/modules/integration/adapter/out/rpc"
)

type server struct{}

func (s *server) Describe(_ context.Context, _ *integrationrpc.Empty) (*integrationrpc.DescribeResponse, error) {
	return &integrationrpc.DescribeResponse{
		Name:    "registry",
		Version: "1.0.0",
		Events:  []string{"batch.completed"},
	}, nil
}

func (s *server) Deliver(_ context.Context, in *integrationrpc.DeliverRequest) (*integrationrpc.DeliverResponse, error) {
	if in.Kind != "batch.completed" {
		return &integrationrpc.DeliverResponse{Accepted: false, Message: fmt.Sprintf("ignored %s", in.Kind)}, nil
	}
	if strings.TrimSpace(in.Batch.ID) == "" || in.Batch.EndTime == "" {
		return nil, fmt.Errorf("completed batch is missing id or end time")
	}
	return &integrationrpc.DeliverResponse{
		Accepted:  true,
		Reference: certificateID(in.Batch),
		Message:   fmt.Sprintf("%.2f kg biochar registered", in.Batch.OutputQuantity),
	}, nil
}

func certificateID(b integrationrpc.Batch) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%.3f", b.ID, b.CoordinatorID, b.EndTime, b.OutputQuantity)))
	return "BCR-" + strings.ToUpper(hex.EncodeToString(sum[:6]))
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: integrationrpc.HandshakeConfig,
		Plugins:         integrationrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
