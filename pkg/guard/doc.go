// Package guard implements the session continuity guard for interactive
// authentication paths.
//
// Interactive sessions get lost for mundane reasons: evicted cookies, links
// opened on another device, expired interaction TTLs. Surfacing a protocol
// error would strand the user mid-flow, so the guard intercepts
// session-sensitive paths and, when the interaction engine reports no valid
// session, walks an ordered fallback chain to find somewhere actionable to
// send the user:
//
//  1. the application's own unknown-session fallback URI (application
//     resolved from the appId query parameter, else the signed UI cookie)
//  2. the tenant-configured session-not-found redirect URL
//  3. the tenant's canonical endpoint at /unknown-session
//
// Each step tolerates its own lookup failures and simply falls through. The
// only user-visible error is a 404 session.not_found when no tenant can be
// resolved at all. The guard never mutates persisted state.
package guard
