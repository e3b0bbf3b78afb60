// Package common contains shared constants and sentinel errors used across
// DefComm components.
package common

// SessionCookieName is the cookie that carries the signed session token
// between the server and its clients.
const SessionCookieName = "jwt"

// APIPrefix is the path prefix every REST route is mounted under.
const APIPrefix = "/api"
