package ast

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBaseNodeFinish(t *testing.T) {
	id := &Identifier{Name: "x"}
	loc := SourceLocation{
		Start: Position{Line: 1, Column: 4},
		End:   Position{Line: 1, Column: 5},
	}
	id.Finish("Identifier", 4, 5, loc)

	if id.Type() != "Identifier" {
		t.Errorf("Type() = %s, want Identifier", id.Type())
	}
	if id.Range() != [2]int{4, 5} {
		t.Errorf("Range() = %v, want [4 5]", id.Range())
	}
	if id.Loc() != loc {
		t.Errorf("Loc() = %v, want %v", id.Loc(), loc)
	}
}

func TestMarshalShape(t *testing.T) {
	id := &Identifier{Name: "x"}
	id.Finish("Identifier", 0, 1, SourceLocation{
		Start: Position{Line: 1, Column: 0},
		End:   Position{Line: 1, Column: 1},
	})
	out, err := Marshal(id)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	want := `{"type":"Identifier","range":[0,1],"loc":{"start":{"line":1,"column":0},"end":{"line":1,"column":1}},"name":"x"}`
	if string(out) != want {
		t.Errorf("json = %s\nwant  %s", out, want)
	}
}

func TestLiteralVariants(t *testing.T) {
	tests := []struct {
		name    string
		literal *Literal
		keyJSON string
	}{
		{"string", &Literal{Value: "s", Raw: `"s"`}, `"value":"s"`},
		{"number", &Literal{Value: 1.5, Raw: "1.5"}, `"value":1.5`},
		{"bool", &Literal{Value: true, Raw: "true"}, `"value":true`},
		{"null", &Literal{Value: nil, Raw: "null"}, `"value":null`},
		{"bigint", &Literal{Value: nil, Raw: "10n", BigInt: "10"}, `"bigint":"10"`},
		{"regex", &Literal{Value: nil, Raw: "/a/g", Regex: &RegexValue{Pattern: "a", Flags: "g"}}, `"regex":{"pattern":"a","flags":"g"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.literal)
			if err != nil {
				t.Fatalf("marshal error: %v", err)
			}
			if !strings.Contains(string(out), tt.keyJSON) {
				t.Errorf("json %s missing %s", out, tt.keyJSON)
			}
		})
	}
}

func TestInterfaceMarkers(t *testing.T) {
	// Compile-time checks that key variants satisfy the right marker
	// interfaces.
	var (
		_ Expression = (*Identifier)(nil)
		_ Pattern    = (*Identifier)(nil)
		_ Expression = (*MemberExpression)(nil)
		_ Pattern    = (*MemberExpression)(nil)
		_ Pattern    = (*ArrayPattern)(nil)
		_ Pattern    = (*ObjectPattern)(nil)
		_ Pattern    = (*AssignmentPattern)(nil)
		_ Pattern    = (*RestElement)(nil)
		_ Statement  = (*FunctionDeclaration)(nil)
		_ Statement  = (*ExportNamedDeclaration)(nil)
		_ Expression = (*ArrowFunctionExpression)(nil)
		_ Expression = (*ChainExpression)(nil)
		_ Expression = (*PrivateIdentifier)(nil)
	)
}

func TestNullChildrenSerializeAsNull(t *testing.T) {
	ret := &ReturnStatement{}
	ret.Finish("ReturnStatement", 0, 7, SourceLocation{
		Start: Position{Line: 1, Column: 0},
		End:   Position{Line: 1, Column: 7},
	})
	out, err := Marshal(ret)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if !strings.Contains(string(out), `"argument":null`) {
		t.Errorf("json %s should carry an explicit null argument", out)
	}
}
