// Package papergen implements the paper generation batch orchestrator.
//
// One batch fans out its unit configurations to the shared worker pool,
// waits for every unit to resolve, streams the outcomes to the client in
// display order, persists the aggregate in one transaction, and finishes
// with a single complete event. Per-unit generation failures are data and
// never abort the batch; validation, stream, and persistence failures are
// fatal and nothing is committed.
package papergen
