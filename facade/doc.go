// Package facade ties together server.Server's lifecycle with the
// process-wide signal handler required by the daemon's termination
// path (POSIX signal handlers cannot carry user data, so the handler
// reaches the running instance through a package-level pointer).
//
// Author: momentics <momentics@gmail.com>
package facade
