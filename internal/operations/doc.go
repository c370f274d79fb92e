// Package operations drives the pipeline: extract the raw multi-source
// table from the document, transform it into the target currency, and
// load the result into durable storage.
//
// Each phase is a Step executed sequentially by the Manager against a
// shared RunState. Phase boundaries are logged as paired start/end
// events; a failing step aborts the run before any output is written.
package operations
