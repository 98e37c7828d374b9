// Package lifecycle defines the action data model: action IDs, the status
// state machine, the state document shape, classified domain errors, and the
// legacy status migration. It holds no I/O; persistence lives in statestore.
package lifecycle
