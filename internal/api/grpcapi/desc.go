package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceDesc describes openlaundry.v1.WashService:
//
//	service WashService {
//	  rpc Start(google.protobuf.Struct) returns (google.protobuf.Struct);
//	  rpc ListPrograms(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc WatchCycles(google.protobuf.Empty) returns (stream google.protobuf.Struct);
//	}
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WashServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Start", Handler: startHandler},
		{MethodName: "ListPrograms", Handler: listProgramsHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchCycles", Handler: watchCyclesHandler, ServerStreams: true},
	},
	Metadata: "openlaundry/v1/wash.proto",
}

func startHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WashServer).Start(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodStart}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WashServer).Start(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listProgramsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WashServer).ListPrograms(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodListPrograms}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WashServer).ListPrograms(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func watchCyclesHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(WashServer).WatchCycles(in, stream)
}
