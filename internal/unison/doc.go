// Package unison runs the external Unison binary for each configured job and
// reports the outcome.
//
// Jobs run strictly one after another: a child is started, waited on, and
// classified before the next one is created. A nonzero exit is logged and
// printed but never stops a batch. Only a failure to start the binary at all,
// or cancellation of the context, ends a batch early.
package unison
