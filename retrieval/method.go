package retrieval

import "strings"

// Method identifies one of the eight retrieval-and-prompting methods.
type Method string

const (
	Method1 Method = "method1"
	Method2 Method = "method2"
	Method3 Method = "method3"
	Method4 Method = "method4"
	Method5 Method = "method5"
	Method6 Method = "method6"
	Method7 Method = "method7"
	Method8 Method = "method8"
)

// DefaultMethod is used for empty or unknown method ids.
const DefaultMethod = Method1

// Methods lists every method in order.
var Methods = []Method{Method1, Method2, Method3, Method4, Method5, Method6, Method7, Method8}

// Valid reports whether m is one of the eight methods.
func (m Method) Valid() bool {
	for _, x := range Methods {
		if m == x {
			return true
		}
	}
	return false
}

func (m Method) String() string { return string(m) }

// ParseMethod trims and lowercases s. Empty or unknown ids resolve to
// DefaultMethod.
func ParseMethod(s string) Method {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return DefaultMethod
	}
	return m
}

// LookupMethod is the strict variant of ParseMethod: it reports false for
// unknown ids instead of falling back.
func LookupMethod(s string) (Method, bool) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}
