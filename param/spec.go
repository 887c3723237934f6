package param

// Spec declares one parameter of a wrapped function.
//
// Name and Description come from the registration site. Index and Type are
// filled in by jsonrpc.NewRequest from the parameter's position and Go type;
// values supplied by the caller are overwritten.
type Spec struct {
	Name        string
	Description string
	Index       int
	Type        *Type

	// Binding is the state cell handed to a state parameter, e.g. a
	// *state.Cell[int]. It must be nil for value parameters.
	Binding any
}

// Named declares a parameter whose value is supplied by the caller.
func Named(name, description string) Spec {
	return Spec{Name: name, Description: description}
}

// Bound declares a state parameter bound to cell. The caller's JSON for this
// parameter, if any, is ignored and the wrapped function receives cell.
func Bound(name, description string, cell any) Spec {
	return Spec{Name: name, Description: description, Binding: cell}
}

// IsState reports whether the parameter has been resolved to a state type.
func (s Spec) IsState() bool {
	return s.Type != nil && s.Type.IsState()
}
