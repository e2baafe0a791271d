/*
Package ports defines the driven ports (interfaces) of the procflow engine.

These interfaces decouple the driver and the suspension controller from storage
backends, action sources and presentation concerns.

# Key Interfaces

  - StateStore: Persists and loads session snapshots.
  - DistributedLocker: Coordinates per-session access across replicas.
  - ActionSource: Lists the action descriptors of an action set.
  - ActionResolver: Resolves an action name to something invocable.
  - Composer: Produces the final response of a procedure.
*/
package ports
