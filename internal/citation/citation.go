// Package citation filters, ranks, and persists the evidence sources a
// conversation accumulated before a record was created.
package citation

// SourceRef is one evidence reference collected during a conversation,
// usually pointing at a document the RAG layer surfaced.
type SourceRef struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath,omitempty"`
	Section  string `json:"section,omitempty"`
	Page     int    `json:"page,omitempty"`

	// Relevance is the retrieval score, when the producer supplied one.
	// A nil score ranks as if it were 1.0; older conversation payloads
	// predate scoring and must not be penalized for it.
	Relevance *float64 `json:"relevance,omitempty"`

	// OtherEntity marks a source the retrieval layer attributed to a
	// different deal. Such sources are never attached, whatever their
	// score.
	OtherEntity bool `json:"otherEntity,omitempty"`
}

// Citation is a persisted, deduplicated evidence reference attached to
// a created record. At most one citation exists per normalized path per
// record.
type Citation struct {
	ID        string  `json:"id"`
	RecordID  string  `json:"recordId"`
	Path      string  `json:"path"`
	FileName  string  `json:"fileName"`
	Section   string  `json:"section,omitempty"`
	Page      int     `json:"page,omitempty"`
	Relevance float64 `json:"relevance"`
}
