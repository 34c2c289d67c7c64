// Package acl is the anti-corruption layer between the upstream Breaking Bad
// API and the domain.
//
// Upstream DTOs are unexported and never leave this package. Every response is
// decoded and validated before a domain value is built, and every failure is
// reported as a domain error:
//
//   - no response (transport failure, open circuit) -> [domain.NetworkError]
//   - status outside 200-299                          -> [domain.BadResponseError]
//   - malformed or incomplete JSON                    -> [domain.DecodeError]
//
// [BaseAdapter] holds the shared request/decode plumbing; [BreakingBadAdapter]
// implements ports.QuoteAPI on top of it.
package acl
