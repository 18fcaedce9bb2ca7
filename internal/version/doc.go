// Package version holds build metadata injected through -ldflags and the
// cobra command that prints it.
package version
