// Package query wires github.com/jmespath-community/go-jmespath into the
// native function ABI, letting scripts run a JMESPath expression over a
// list/map value tree. Grounded on the teacher's modules/jmespath package
// (same dependency, same single-function surface: compile expression,
// evaluate against a decoded document, re-encode the result), rebuilt
// against this VM's Value tree instead of risor's object.Object tree --
// the marshal/unmarshal pair (toGo/fromGo) plays the role risor's
// object.FromGoType/object.ToGoType conversion helpers played there.
package query

import (
	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/glint-lang/glint/symbols"
	"github.com/glint-lang/glint/value"
)

// Register defines "query_search" in funcs.
func Register(funcs *symbols.FuncTable) {
	funcs.Define("query_search", symbols.FuncEntry{
		Kind:      symbols.FuncNative,
		NativeOne: search,
	})
}

func search(host symbols.NativeHost, receiver *value.Value, args []value.Value) value.Value {
	if len(args) < 2 {
		host.Panic("query_search requires an expression and a document argument")
		return value.None
	}
	expr := string(host.ValueAsString(args[0]))
	doc := toGo(host, args[1])

	result, err := jmespath.Search(expr, doc)
	if err != nil {
		host.Panic(err.Error())
		return value.None
	}
	return fromGo(host, result)
}

// toGo decodes a Value tree into the plain interface{} tree go-jmespath
// expects (float64/bool/nil/string/[]interface{}/map[string]interface{}).
func toGo(host symbols.NativeHost, v value.Value) any {
	if v.IsNumber() {
		return v.AsFloat()
	}
	if v.IsNone() {
		return nil
	}
	if v.IsString() {
		return string(host.ValueAsString(v))
	}
	if v == value.True || v == value.False {
		return v.AsBool()
	}
	if elems, ok := host.ListElems(v); ok {
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = toGo(host, e)
		}
		return out
	}
	if keys, vals, ok := host.MapPairs(v); ok {
		out := make(map[string]any, len(keys))
		for i, k := range keys {
			out[string(host.ValueAsString(k))] = toGo(host, vals[i])
		}
		return out
	}
	return nil
}

// fromGo re-encodes a go-jmespath result back into a Value tree.
func fromGo(host symbols.NativeHost, x any) value.Value {
	switch t := x.(type) {
	case nil:
		return value.None
	case bool:
		return value.InitBool(t)
	case float64:
		return value.InitFloat(t)
	case int:
		return value.InitFloat(float64(t))
	case string:
		return host.AllocString(t)
	case []any:
		elems := make([]value.Value, len(t))
		for i, e := range t {
			elems[i] = fromGo(host, e)
		}
		return host.NewList(elems)
	case map[string]any:
		keys := make([]value.Value, 0, len(t))
		vals := make([]value.Value, 0, len(t))
		for k, v := range t {
			keys = append(keys, host.AllocString(k))
			vals = append(vals, fromGo(host, v))
		}
		return host.NewMap(keys, vals)
	default:
		return value.None
	}
}
