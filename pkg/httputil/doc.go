// Package httputil provides HTTP handler utilities for the platform's JSON
// error contract, response encoding, and shared middleware.
//
// Every user-visible error produced by gatehouse is either a redirect issued
// by a middleware or a JSON body of the form:
//
//	{"code": "session.not_found", "message": "..."}
//
// Handlers should return *RequestError for domain failures and let
// WriteRequestError pick the status and code; anything else renders as a
// 500 with code "internal_server_error".
package httputil
