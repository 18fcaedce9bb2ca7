package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Soumi0401/SimpleNotification/internal/bridge"
	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
	"github.com/Soumi0401/SimpleNotification/internal/logger"
)

// Dispatcher abstracts the method channel handler the transport depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, method string, args map[string]any) (any, error)
}

// Server serves one named method channel.
type Server struct {
	// dispatcher handles decoded calls.
	dispatcher Dispatcher
	// channel is the channel name accepted by this server.
	channel string
}

var errMalformedMethod = errors.New("malformed method name")

// NewServer creates a transport for the named channel.
func NewServer(channel string, dispatcher Dispatcher) *Server {
	return &Server{
		dispatcher: dispatcher,
		channel:    channel,
	}
}

// ServerOption installs the channel on a gRPC server.
//
//nolint:ireturn // grpc.ServerOption is the type gRPC expects.
func (s *Server) ServerOption() grpc.ServerOption {
	return grpc.UnknownServiceHandler(s.handleStream)
}

// FullMethod builds the gRPC method path of a channel method.
func FullMethod(channel, method string) string {
	return "/" + channel + "/" + method
}

// SplitFullMethod separates a gRPC method path into channel and method names.
// Channel names may contain slashes; the method is the last segment.
func SplitFullMethod(fullMethod string) (string, string, error) {
	trimmed := strings.TrimPrefix(fullMethod, "/")

	pos := strings.LastIndex(trimmed, "/")
	if pos <= 0 {
		return "", "", fmt.Errorf("%w: %q", errMalformedMethod, fullMethod)
	}

	return trimmed[:pos], trimmed[pos+1:], nil
}

// Invoke runs one channel call and maps failures to gRPC status errors.
func (s *Server) Invoke(ctx context.Context, method string, args *structpb.Struct) (*structpb.Value, error) {
	result, err := s.dispatcher.Dispatch(ctx, method, args.AsMap())
	if err != nil {
		return nil, toStatus(ctx, method, err)
	}

	value, err := structpb.NewValue(result)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to encode channel result", "method", method, "error", err)

		return nil, status.Error(codes.Internal, "unable to encode result")
	}

	return value, nil
}

// handleStream receives one request message, dispatches it and sends the result.
func (s *Server) handleStream(_ any, stream grpc.ServerStream) error {
	ctx := stream.Context()

	fullMethod, ok := grpc.MethodFromServerStream(stream)
	if !ok {
		return status.Error(codes.Internal, "method name unavailable")
	}

	channel, method, err := SplitFullMethod(fullMethod)
	if err != nil {
		return status.Error(codes.Unimplemented, err.Error())
	}

	if channel != s.channel {
		return status.Errorf(codes.Unimplemented, "unknown channel %q", channel)
	}

	args := new(structpb.Struct)
	if err = stream.RecvMsg(args); err != nil {
		return err
	}

	result, err := s.Invoke(ctx, method, args)
	if err != nil {
		return err
	}

	return stream.SendMsg(result)
}

// toStatus maps dispatcher errors to status codes.
func toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, bridge.ErrNotImplemented):
		return status.Errorf(codes.Unimplemented, "method %q not implemented", method)
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		logger.ErrorKV(ctx, "Channel call failed", "method", method, "error", err)

		return status.Error(codes.Internal, err.Error())
	}
}
