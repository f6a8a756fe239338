package trail

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/fundtrail/pkg/model"
)

// RawNode is a decoded but unvalidated graph entry. Data is nil when the JSON
// value was not an object; such entries are removed by Sanitize. Fields of
// the wrong type are skipped one by one, so they never cost the node or its
// children.
type RawNode struct {
	Data     *model.NodeData
	Children []*RawNode
}

func (r *RawNode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var fields map[string]json.RawMessage
	if len(b) == 0 || b[0] != '{' || json.Unmarshal(b, &fields) != nil {
		*r = RawNode{}
		return nil
	}
	*r = RawNode{Data: decodePayload(b, fields)}
	// A non-array children value leaves the node a leaf.
	if raw, ok := fields["children"]; ok {
		var children []*RawNode
		if json.Unmarshal(raw, &children) == nil {
			r.Children = children
		}
	}
	return nil
}

// decodePayload decodes the node fields of object b. When the whole object
// does not fit NodeData it retries one field at a time and keeps every field
// that decodes.
func decodePayload(b []byte, fields map[string]json.RawMessage) *model.NodeData {
	var data model.NodeData
	if json.Unmarshal(b, &data) == nil {
		return &data
	}
	data = model.NodeData{}
	for key, raw := range fields {
		if key == "children" {
			continue
		}
		one, err := json.Marshal(map[string]json.RawMessage{key: raw})
		if err != nil {
			continue
		}
		var field model.NodeData
		if json.Unmarshal(one, &field) != nil {
			continue
		}
		// Decoding the single key again into data sets just that field.
		_ = json.Unmarshal(one, &data)
	}
	return &data
}

// Document is a decoded /graph_data response.
type Document struct {
	// Error is the server's data-absent message, if any.
	Error string
	Root  *RawNode
}

// DecodeDocument parses a graph document. Malformed entries inside the tree
// are kept as payload-less nodes; only a body that is not a JSON object is an
// error.
func DecodeDocument(b []byte) (*Document, error) {
	var head struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, fmt.Errorf("decoding graph document: %w", err)
	}
	var root RawNode
	if err := json.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("decoding graph document: %w", err)
	}
	if root.Data == nil {
		root.Data = &model.NodeData{}
	}
	if !root.Data.Name.Valid {
		root.Data.Name = model.NewIdentifier(model.RootName)
	}
	return &Document{Error: head.Error, Root: &root}, nil
}

// Empty reports whether the document carries no tree at all.
func (d *Document) Empty() bool {
	return d.Error != "" || d.Root == nil || len(d.Root.Children) == 0
}

// MarshalJSON writes the node in the /graph_data wire shape. Children are
// always an array so clients can tell leaves apart from malformed entries.
func (r *RawNode) MarshalJSON() ([]byte, error) {
	children := r.Children
	if children == nil {
		children = []*RawNode{}
	}
	data := r.Data
	if data == nil {
		data = &model.NodeData{}
	}
	return json.Marshal(struct {
		*model.NodeData
		Children []*RawNode `json:"children"`
	}{data, children})
}
