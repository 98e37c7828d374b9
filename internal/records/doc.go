// Package records persists transcript records: one document per transcript
// holding the transcript text and the analysis key map maintained by the
// revision engine. Documents are read and rewritten whole.
package records
