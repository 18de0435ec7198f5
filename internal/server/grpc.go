package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pickledire/feign-server-go/internal/config"
	"github.com/pickledire/feign-server-go/internal/game"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "feign.v1.FeignService"

// FeignServiceServer is the gRPC surface. Requests and responses are
// google.protobuf.Struct messages carrying the same JSON as the WebSocket
// commands; responses hold the result under "data".
type FeignServiceServer interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGameState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ProcessAction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckGameOver(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGameLog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMatches(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// feignServer implements FeignServiceServer over a Dispatcher.
type feignServer struct {
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewFeignServer creates the gRPC service implementation.
func NewFeignServer(dispatcher *Dispatcher, logger *zap.Logger) FeignServiceServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &feignServer{dispatcher: dispatcher, logger: logger}
}

func (s *feignServer) CreateGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, CmdCreateGame, req)
}

func (s *feignServer) GetGameState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, CmdGetGameState, req)
}

func (s *feignServer) ProcessAction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, CmdProcessAction, req)
}

func (s *feignServer) CheckGameOver(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, CmdCheckGameOver, req)
}

func (s *feignServer) GetGameLog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, CmdGetGameLog, req)
}

func (s *feignServer) ResetGame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, CmdResetGame, req)
}

func (s *feignServer) GetStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, CmdGetStats, req)
}

func (s *feignServer) ListMatches(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.call(ctx, CmdListMatches, req)
}

func (s *feignServer) call(ctx context.Context, command string, req *structpb.Struct) (*structpb.Struct, error) {
	var data json.RawMessage
	if req != nil && len(req.GetFields()) > 0 {
		raw, err := req.MarshalJSON()
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
		}
		data = raw
	}

	result, err := s.dispatcher.Dispatch(ctx, command, data)
	if err != nil {
		return nil, toStatus(err)
	}

	resp, err := toStruct(result)
	if err != nil {
		s.logger.Error("failed to encode response", zap.String("command", command), zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

// toStruct wraps any JSON-encodable value as {"data": value}.
func toStruct(value any) (*structpb.Struct, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{"data": decoded})
}

func toStatus(err error) error {
	var actionErr *game.ActionError
	switch {
	case errors.Is(err, game.ErrNoActiveGame):
		return status.Error(codes.FailedPrecondition, game.ErrNoActiveGame.Message)
	case errors.Is(err, ErrBadRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrUnknownCommand):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &actionErr):
		return status.Error(codes.FailedPrecondition, actionErr.Message)
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func unaryHandler(method func(FeignServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error), fullMethod string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(FeignServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(FeignServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func methodDesc(name string, method func(FeignServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler:    unaryHandler(method, fmt.Sprintf("/%s/%s", ServiceName, name)),
	}
}

// FeignServiceDesc describes the service for grpc.Server.RegisterService.
var FeignServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FeignServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("CreateGame", FeignServiceServer.CreateGame),
		methodDesc("GetGameState", FeignServiceServer.GetGameState),
		methodDesc("ProcessAction", FeignServiceServer.ProcessAction),
		methodDesc("CheckGameOver", FeignServiceServer.CheckGameOver),
		methodDesc("GetGameLog", FeignServiceServer.GetGameLog),
		methodDesc("ResetGame", FeignServiceServer.ResetGame),
		methodDesc("GetStats", FeignServiceServer.GetStats),
		methodDesc("ListMatches", FeignServiceServer.ListMatches),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "feign/v1/feign.proto",
}

// RegisterFeignServiceServer registers srv on s.
func RegisterFeignServiceServer(s grpc.ServiceRegistrar, srv FeignServiceServer) {
	s.RegisterService(&FeignServiceDesc, srv)
}

// NewGRPCServer builds a grpc.Server with the standard interceptor chain.
func NewGRPCServer(cfg config.GRPCConfig, dispatcher *Dispatcher, logger *zap.Logger) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(ChainUnaryInterceptors(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	}
	if cfg.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(cfg.MaxConcurrentStreams)))
	}

	srv := grpc.NewServer(opts...)
	RegisterFeignServiceServer(srv, NewFeignServer(dispatcher, logger))
	return srv
}

// ServeGRPC serves on lis until ctx is cancelled, then stops gracefully.
func ServeGRPC(ctx context.Context, srv *grpc.Server, lis net.Listener, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting gRPC server", zap.String("address", lis.Addr().String()))
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		srv.GracefulStop()
		return nil
	}
}
