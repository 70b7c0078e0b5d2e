package window

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Transcript is a point-in-time, read-only export of a window's state,
// suitable for persisting or handing to another process. NextSeq lets
// a host that rebuilds the window keep sequence numbering consistent.
type Transcript struct {
	Capacity  int     `json:"capacity"`
	TotalCost int     `json:"total_cost"`
	NextSeq   uint64  `json:"next_seq"`
	Entries   []Entry `json:"entries"`
}

// Transcript exports the current window state under the window lock,
// so the result is a consistent snapshot.
func (w *Window) Transcript() Transcript {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Transcript{
		Capacity:  w.capacity,
		TotalCost: w.totalCost,
		NextSeq:   w.nextSeq,
		Entries:   append([]Entry(nil), w.entries...),
	}
}

// MarshalIndent renders the transcript as indented JSON.
func (t Transcript) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// TranscriptSchema returns the JSON Schema describing the transcript
// format, for hosts that validate persisted snapshots.
func TranscriptSchema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(&Transcript{})
	return json.MarshalIndent(schema, "", "  ")
}
