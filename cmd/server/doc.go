// Command server runs the authenticated file server. Configuration is read
// from the environment (see internal/infrastructure/config); the process
// shuts down gracefully on SIGINT/SIGTERM.
package main
