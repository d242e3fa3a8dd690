package serialization

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/editor/internal/core/reflection"
)

// Indent is the indentation of written documents.
const Indent = 2

// Marshal encodes obj with the default codecs.
func Marshal(walker *reflection.Walker, obj reflection.Object) ([]byte, error) {
	node, err := NewEncoder(walker, nil, nil).Encode(obj)
	if err != nil {
		return nil, err
	}
	return EncodeDocument(node)
}

// Unmarshal applies a YAML document to obj with the default codecs. An
// empty document changes nothing.
func Unmarshal(walker *reflection.Walker, data []byte, obj reflection.Object) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 || (doc.Kind == yaml.DocumentNode && len(doc.Content) == 0) {
		return nil
	}
	return NewDecoder(walker, nil, nil).Decode(&doc, obj)
}

// EncodeDocument writes any yaml.v3 value, nodes included, with the
// package's indentation.
func EncodeDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
