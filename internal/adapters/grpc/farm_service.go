package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const farmServiceName = "minifarm.v1.FarmService"

const (
	methodEnqueueOrder  = "EnqueueOrder"
	methodCancelOrder   = "CancelOrder"
	methodCollectOutput = "CollectOutput"
	methodOpenControls  = "OpenControls"
	methodCloseControls = "CloseControls"
	methodGetFactory    = "GetFactory"
	methodListFactories = "ListFactories"
	methodListResources = "ListResources"
	methodSaveGame      = "SaveGame"
)

// FarmServiceServer is the daemon API. Every message is a
// google.protobuf.Struct, so the service needs no generated code and is
// served with the default proto codec.
type FarmServiceServer interface {
	EnqueueOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CollectOutput(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OpenControls(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseControls(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFactory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFactories(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListResources(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var farmServiceDesc = grpc.ServiceDesc{
	ServiceName: farmServiceName,
	HandlerType: (*FarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(methodEnqueueOrder, FarmServiceServer.EnqueueOrder),
		unaryMethod(methodCancelOrder, FarmServiceServer.CancelOrder),
		unaryMethod(methodCollectOutput, FarmServiceServer.CollectOutput),
		unaryMethod(methodOpenControls, FarmServiceServer.OpenControls),
		unaryMethod(methodCloseControls, FarmServiceServer.CloseControls),
		unaryMethod(methodGetFactory, FarmServiceServer.GetFactory),
		unaryMethod(methodListFactories, FarmServiceServer.ListFactories),
		unaryMethod(methodListResources, FarmServiceServer.ListResources),
		unaryMethod(methodSaveGame, FarmServiceServer.SaveGame),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "minifarm/v1/farm.proto",
}

// RegisterFarmServiceServer attaches srv to a gRPC server
func RegisterFarmServiceServer(s grpc.ServiceRegistrar, srv FarmServiceServer) {
	s.RegisterService(&farmServiceDesc, srv)
}

type unaryCall func(FarmServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryMethod builds the handler protoc-gen-go-grpc would generate for a
// unary Struct -> Struct method
func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FarmServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(FarmServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func fullMethod(name string) string {
	return "/" + farmServiceName + "/" + name
}
