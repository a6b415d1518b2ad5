// Package rpc is the wire contract between biochar and its integration
// plugins: a hand-written gRPC service that exchanges JSON payloads.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey   = "integration"
	serviceName    = "biochar.integration.v1.Integration"
	jsonCodecName  = "json"
	methodDescribe = "/" + serviceName + "/Describe"
	methodDeliver  = "/" + serviceName + "/Deliver"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "BIOCHAR_INTEGRATION",
	MagicCookieValue: "biochar",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type DescribeResponse struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Events  []string `json:"events"`
}

// Batch carries timestamps as RFC 3339 strings; EndTime is empty until the
// batch completes.
type Batch struct {
	ID             string  `json:"id"`
	CoordinatorID  string  `json:"coordinator_id"`
	KilnID         string  `json:"kiln_id"`
	BiomassTypeID  string  `json:"biomass_type_id"`
	Status         string  `json:"status"`
	StartTime      string  `json:"start_time"`
	InputQuantity  float64 `json:"input_quantity"`
	EndTime        string  `json:"end_time,omitempty"`
	OutputQuantity float64 `json:"output_quantity,omitempty"`
	PhotoRef       string  `json:"photo_ref,omitempty"`
}

type DeliverRequest struct {
	Kind  string `json:"kind"`
	At    string `json:"at"`
	Batch Batch  `json:"batch"`
}

type DeliverResponse struct {
	Accepted  bool   `json:"accepted"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

type IntegrationServer interface {
	Describe(ctx context.Context, in *Empty) (*DescribeResponse, error)
	Deliver(ctx context.Context, in *DeliverRequest) (*DeliverResponse, error)
}

type IntegrationClient interface {
	Describe(ctx context.Context) (*DescribeResponse, error)
	Deliver(ctx context.Context, in *DeliverRequest) (*DeliverResponse, error)
}

type integrationClient struct {
	conn *grpc.ClientConn
}

func NewIntegrationClient(conn *grpc.ClientConn) IntegrationClient {
	return &integrationClient{conn: conn}
}

func (c *integrationClient) Describe(ctx context.Context) (*DescribeResponse, error) {
	out := &DescribeResponse{}
	if err := c.conn.Invoke(ctx, methodDescribe, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *integrationClient) Deliver(ctx context.Context, in *DeliverRequest) (*DeliverResponse, error) {
	out := &DeliverResponse{}
	if err := c.conn.Invoke(ctx, methodDeliver, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterIntegrationServer(server grpc.ServiceRegistrar, impl IntegrationServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*IntegrationServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Describe",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Describe(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDescribe}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Describe(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Deliver",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &DeliverRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Deliver(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDeliver}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*DeliverRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Deliver(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/integration-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl IntegrationServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterIntegrationServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewIntegrationClient(conn), nil
}

func PluginMap(impl IntegrationServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
