package model

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// ExportVersion is the current export document version.
const ExportVersion = 1

// MergeMode selects how an imported collection combines with the existing
// one.
type MergeMode string

const (
	// MergeModeMerge unions by ID; an imported action with a known ID
	// replaces the existing one, the rest are appended.
	MergeModeMerge MergeMode = "merge"
	// MergeModeReplace discards the existing collection entirely.
	MergeModeReplace MergeMode = "replace"
)

// ExportDocument is the versioned interchange format for full action
// collections.
type ExportDocument struct {
	Version int      `json:"version"`
	Actions []Action `json:"actions"`
}

// NewExportDocument snapshots a collection into the current document
// version.
func NewExportDocument(actions []Action) *ExportDocument {
	out := make([]Action, len(actions))
	copy(out, actions)
	return &ExportDocument{Version: ExportVersion, Actions: out}
}

// Encode serializes the document for storage or sharing.
func (d *ExportDocument) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode export document")
	}
	return data, nil
}

// ParseExportDocument decodes and validates raw bytes as an export
// document. Validation is all-or-nothing: any shape violation rejects the
// whole document so imports stay atomic.
func ParseExportDocument(data []byte) (*ExportDocument, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc ExportDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, goerr.Wrap(err, "document is not a valid action export")
	}
	if doc.Version != ExportVersion {
		return nil, goerr.New("unsupported export document version")
	}
	if doc.Actions == nil {
		return nil, goerr.New("export document has no actions field")
	}
	seen := make(map[string]struct{}, len(doc.Actions))
	for _, a := range doc.Actions {
		if a.ID == "" {
			return nil, goerr.New("exported action is missing an id")
		}
		if _, dup := seen[a.ID]; dup {
			return nil, goerr.New("duplicate action id in document: " + a.ID)
		}
		seen[a.ID] = struct{}{}
		// A scope-less action would persist as an unknown kind and make
		// the whole stored collection unreadable on the next load.
		if !a.Scope.Valid() {
			return nil, goerr.New("action " + a.ID + " has no valid scope")
		}
	}
	return &doc, nil
}
