// Package server runs the alarm bridge process.
//
// It loads settings, wires the in-process alarm manager with its receivers,
// and serves the alarm method channel over gRPC and, optionally, HTTP until
// the context is canceled.
package server
