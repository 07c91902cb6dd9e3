// Package server holds the HTTP server configuration and constants.
//
// The start command builds the Fiber application; this package defines its settings
// (listen port, API key, read timeout) and the environment the process runs in.
// That environment is the one reached with the process's own credentials; every
// other environment is reached by assuming a role.
package server
