package domain

// Job is a unit of work registered on the node. The node assigns the
// identifier; the client holds no job state beyond it.
type Job struct {
	// ID is the node-assigned opaque identifier.
	ID string `json:"id"`

	// Name is the human-readable job name, if the node reports one.
	Name string `json:"name"`

	// Type is the node-side job type (as reported, not interpreted).
	Type string `json:"type"`

	// Schema version of the spec the job was created from, if reported.
	SchemaVersion int `json:"schema_version,omitempty" table:"wide"`

	// CreatedAt is the node-reported creation timestamp, verbatim.
	CreatedAt string `json:"created_at,omitempty" table:"wide"`
}

// JobSpec is the declarative job specification. The client treats it
// as an opaque document: it is read from disk and forwarded verbatim
// as the create payload, never parsed or validated locally.
type JobSpec struct {
	// TOML is the raw specification text.
	TOML string
}

// Empty reports whether the spec carries no content.
func (s JobSpec) Empty() bool {
	return len(s.TOML) == 0
}
