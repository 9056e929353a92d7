// Package cli implements the interactive userbase command line.
//
// The CLI runs a small REPL with register, login, me, users and logout
// commands. A successful login is kept in a local SQLite file so the next
// run starts already authenticated.
package cli
