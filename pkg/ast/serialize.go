package ast

import "encoding/json"

// Marshal serializes a node to its ESTree JSON form. The node structs
// carry the serialization in their field tags, so this is a thin wrapper
// kept for discoverability.
func Marshal(n Node) ([]byte, error) {
	return json.Marshal(n)
}

// MarshalIndent serializes a node to indented ESTree JSON.
func MarshalIndent(n Node, indent string) ([]byte, error) {
	return json.MarshalIndent(n, "", indent)
}
