package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
	"github.com/KevinKickass/OpenLaundryCore/internal/machine"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote WashService.
type Client struct {
	conn  grpc.ClientConnInterface
	token string
}

func NewClient(conn grpc.ClientConnInterface, token string) *Client {
	return &Client{conn: conn, token: token}
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}

func (c *Client) Start(ctx context.Context, req cycle.Request) (*cycle.Report, error) {
	in, err := toStruct(req)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), MethodStart, in, out); err != nil {
		return nil, err
	}

	var report cycle.Report
	if err := fromStruct(out, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

func (c *Client) ListPrograms(ctx context.Context) (*machine.Catalog, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), MethodListPrograms, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}

	var catalog machine.Catalog
	if err := fromStruct(out, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &catalog, nil
}

// WatchCycles calls fn for every event until the stream ends or ctx is done.
func (c *Client) WatchCycles(ctx context.Context, fn func(cycle.Event)) error {
	stream, err := c.conn.NewStream(c.outgoing(ctx), &ServiceDesc.Streams[0], MethodWatchCycles)
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var event cycle.Event
		if err := fromStruct(msg, &event); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		fn(event)
	}
}
