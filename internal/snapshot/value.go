package snapshot

// A Value is a tagged node in a structural-equality comparison: a string
// or number primitive, an ordered list, or a keyed map. Scraped results
// are lifted into Values so every diff call site shares one equality rule
// instead of hand-rolling its own.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	List []Value
	Map  map[string]Value
}

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindList
	KindMap
)

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func List(vs ...Value) Value { return Value{Kind: KindList, List: vs} }

func Map(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

// Strings lifts a string slice into an ordered list Value.
func Strings(ss []string) Value {
	vs := make([]Value, len(ss))
	for i, s := range ss {
		vs[i] = String(s)
	}
	return List(vs...)
}

// Equal reports deep equality. Primitives compare by value, lists are
// order-sensitive and element-wise, maps compare key sets in both
// directions and recurse on values.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindString:
		return a.Str == b.Str
	case KindNumber:
		return a.Num == b.Num
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for k, av := range a.Map {
			bv, ok := b.Map[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
