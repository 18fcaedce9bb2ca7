// Package config loads, validates and saves the YAML settings shared by the
// bridge binaries.
//
// Receiver secrets can be kept out of the file: a .env file and the process
// environment override them (see ApplyEnv).
package config
