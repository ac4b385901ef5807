// Package batch parses tool arguments that take one value or many and runs
// one Fizzy call per item, collecting per-item results so a single failure
// does not abort the rest.
package batch
