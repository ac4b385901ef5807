// Package pagination turns single-page list responses into a uniform
// cursor-based contract.
//
// A cursor is an opaque token wrapping the full URL of the next page. Callers
// hand it back unchanged to continue a listing; the URL already carries every
// filter, so filters passed alongside a cursor are ignored.
package pagination
