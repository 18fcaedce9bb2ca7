// Package logger wraps zap with a process-wide sugared logger.
//
// Loggers travel in the context (ToContext, FromContext, WithName, WithKV) so
// every component logs with its own scope, and the KV helpers keep call sites
// short. Configure applies the level and encoder chosen in the settings file.
package logger
