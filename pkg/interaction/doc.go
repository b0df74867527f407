// Package interaction binds gatehouse to the interaction engine's session
// state.
//
// The guard only needs a yes/no answer: does this request carry a live
// interaction session? Validator is that contract. RedisStore is the
// product's adapter — the interaction engine writes sessions to Redis keyed
// by the interaction cookie, and the store checks key existence without ever
// reading or mutating the session payload on the guard path.
package interaction
