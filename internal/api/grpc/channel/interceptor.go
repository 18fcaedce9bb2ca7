package channel

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/Soumi0401/SimpleNotification/internal/logger"
)

// LoggingStreamInterceptor logs every channel call with its status code and latency.
func LoggingStreamInterceptor(
	srv any,
	stream grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	started := time.Now()
	err := handler(srv, stream)

	logger.DebugKV(
		stream.Context(),
		"Channel call handled",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"latency", time.Since(started).String(),
	)

	return err
}
