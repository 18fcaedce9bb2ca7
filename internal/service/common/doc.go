// Package common holds helpers shared by several services.
//
// It provides a gRPC client for the alarm method channel with per-call
// timeouts, and detection of the current system actor for audit purposes.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
