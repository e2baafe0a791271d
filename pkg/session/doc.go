/*
Package session owns the mapping from session ID to durable snapshot.

Manager serializes operations per session ID with a reference-counted in-process
mutex, optionally backed by a DistributedLocker for multi-replica deployments.
Controller implements the suspend/resume surface on top of it: Start drives a new
session until it pauses for input or finishes, and Resume injects an answer and
drives on. The stored snapshot is the only state carried between calls.
*/
package session
