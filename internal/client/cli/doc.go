// Package cli implements the interactive DefComm terminal client.
//
// The REPL reads one command per line. Commands that need more input
// prompt for it; passwords are read without echo when stdin is a
// terminal. While logged in, background pollers keep the session fresh and
// announce new groups and, for HQ, operatives waiting for approval.
//
// Message text is encrypted before it leaves the process and decrypted
// only for display.
package cli
