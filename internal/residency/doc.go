// Package residency decides which image assets are resident within a
// constrained device-memory budget. It is structured into small files by
// concern:
//
//   - manager.go: core Manager type, budget setters, Close.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: AssetID, ImageClass, priorities, the per-asset record.
//   - register.go: registration by handle and by path, MarkUsed.
//   - usequeue.go: lock-free multi-producer buffer of use signals.
//   - costs.go: cost-update inbox and drain.
//   - iterate.go: the residency policy (priority+LRU sort, budget fit, eviction).
//   - blocking.go: IterateBlocking single-asset page-in.
//   - instantiator.go: the Instantiator capability set and runtime rebind.
//   - taskgroup.go / fence.go: background task and counting-fence contracts.
//   - errors.go: error types and helpers (IsUnknownAsset, IsNoInstantiator).
//   - events.go / eventpub_*.go: lifecycle events; noop, in-memory and zerolog publishers.
//   - status.go / metrics.go: read-only projections for HTTP and Prometheus.
//
// Concurrency contract: the public API is synchronous. One lock guards the
// record table, registration and the iteration step; a separate small lock
// guards the cost inbox so instantiator callbacks never deadlock against an
// iteration; the use queue is lock-free. Background work is owned by the
// caller's TaskGroup and carries a counting fence signal that the manager
// uses for backpressure and teardown.
package residency
