package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
	"github.com/KevinKickass/OpenLaundryCore/internal/machine"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "openlaundry.v1.WashService"

	MethodStart        = "/" + ServiceName + "/Start"
	MethodListPrograms = "/" + ServiceName + "/ListPrograms"
	MethodWatchCycles  = "/" + ServiceName + "/WatchCycles"
)

// WashServer is the server API for the wash service. Messages are
// google.protobuf.Struct documents carrying the same JSON as the REST API.
type WashServer interface {
	Start(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListPrograms(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	WatchCycles(req *emptypb.Empty, stream grpc.ServerStream) error
}

// Runner is the part of cycle.Runner the service needs.
type Runner interface {
	Run(ctx context.Context, req cycle.Request) (*cycle.Report, error)
}

type WashService struct {
	runner   Runner
	streamer *EventStreamer
	logger   *zap.Logger
}

func NewWashService(runner Runner, streamer *EventStreamer, logger *zap.Logger) *WashService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WashService{runner: runner, streamer: streamer, logger: logger}
}

// Register attaches the service to a gRPC server.
func Register(s *grpc.Server, svc WashServer) {
	s.RegisterService(&ServiceDesc, svc)
}

func (s *WashService) Start(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req cycle.Request
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid wash request: %v", err)
	}

	report, err := s.runner.Run(ctx, req)
	if err != nil {
		s.logger.Warn("gRPC wash request failed", zap.Error(err))
		return nil, toStatus(err)
	}

	return toStruct(report)
}

func (s *WashService) ListPrograms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(machine.ProgramCatalog())
}

func (s *WashService) WatchCycles(_ *emptypb.Empty, stream grpc.ServerStream) error {
	eventCh := s.streamer.Subscribe()
	defer s.streamer.Unsubscribe(eventCh)

	for {
		select {
		case event, ok := <-eventCh:
			if !ok {
				return nil
			}

			msg, err := toStruct(event)
			if err != nil {
				return status.Errorf(codes.Internal, "encode event: %v", err)
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}

		case <-stream.Context().Done():
			return stream.Context().Err()
		}
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, cycle.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, cycle.ErrMachineBusy):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("to struct: %w", err)
	}
	return out, nil
}

func fromStruct(in *structpb.Struct, v any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("from struct: %w", err)
	}
	return json.Unmarshal(data, v)
}
