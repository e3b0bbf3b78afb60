// Package client talks to the DefComm REST API.
//
// # Overview
//
//  1. APIClient: a typed client for every /api endpoint. The session lives
//     in the HttpOnly cookie the server sets, kept in a cookie jar.
//  2. Poller: re-runs a fetch on a fixed interval. The terminal client uses
//     one poller per view, the way the web client refreshes its pages.
//
// # Error Handling
//
// A 401 response is returned as ErrUnauthorized. Any other non-2xx response
// is an *APIError carrying the server message and field errors. Transport
// failures are wrapped in ErrUnavailable.
package client
