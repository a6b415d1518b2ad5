package main

import (
	"context"
	"strings"
	"testing"

	integrationrpc "biochar/internal/modules/integration/adapter/out/rpc"
)

func TestDeliverIssuesDeterministicCertificate(t *testing.T) {
	t.Parallel()
	srv := &server{}
	req := &integrationrpc.DeliverRequest{
		Kind: "batch.completed",
		Batch: integrationrpc.Batch{
			ID:             "b1",
			CoordinatorID:  "north",
			EndTime:        "2026-03-01T12:00:00Z",
			OutputQuantity: 62,
		},
	}
	first, err := srv.Deliver(context.Background(), req)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	second, err := srv.Deliver(context.Background(), req)
	if err != nil {
		t.Fatalf("deliver again: %v", err)
	}
	if !first.Accepted || !strings.HasPrefix(first.Reference, "BCR-") || first.Reference != second.Reference {
		t.Fatalf("unexpected receipts %+v %+v", first, second)
	}

	started, err := srv.Deliver(context.Background(), &integrationrpc.DeliverRequest{Kind: "batch.started", Batch: integrationrpc.Batch{ID: "b2"}})
	if err != nil {
		t.Fatalf("deliver started: %v", err)
	}
	if started.Accepted {
		t.Fatalf("started events should not be accepted")
	}
	if _, err := srv.Deliver(context.Background(), &integrationrpc.DeliverRequest{Kind: "batch.completed", Batch: integrationrpc.Batch{ID: "b3"}}); err == nil {
		t.Fatalf("completed event without end time should fail")
	}
}
