// Package utils provides shared low-level helpers used throughout the
// pagesift internals. It covers a synchronous HTTP GET/JSON round-trip
// helper for external APIs, response-body close logging, and string
// truncation utilities.
//
// Key entry points: [DoGetJSON] for JSON API calls, [CloseWithLog] for
// deferred body closing, and [TruncateRunes] for rune-safe character
// budgets.
package utils
