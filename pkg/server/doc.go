// Package server wires the HTTP surface: the experience routes protected by
// the session continuity guard, the SAML application admin API, and the
// shared middleware stack.
package server
