// Package runtime implements the state machine driver of a procedure.
//
// The driver is stateless: every call receives a snapshot, performs at most one
// transition and returns a new snapshot. Routing looks only at the cursor and the
// type of the step under it:
//
//	index >= len(steps) -> TERMINATED
//	ASK_USER            -> AWAITING_INPUT
//	API_CALL            -> INVOKING_ACTION
//	RESPOND_FINAL       -> FINALIZED
//	anything else       -> TERMINATED
package runtime
