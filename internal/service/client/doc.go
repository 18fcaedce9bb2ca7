// Package client implements the alarm-channel commands.
//
// Each command dials the bridge server over gRPC, invokes one method on the
// alarm channel and logs the reply.
package client
