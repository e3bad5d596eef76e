package pricing

// Registry is an insertion-ordered mapping of rule name to rule.
type Registry[T any] struct {
	names []string
	rules map[string]T
}

// NewRegistry returns an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{rules: make(map[string]T)}
}

// Set replaces the rule stored under name, keeping its position. Unknown names are
// appended.
func (r *Registry[T]) Set(name string, rule T) {
	if _, ok := r.rules[name]; !ok {
		r.names = append(r.names, name)
	}
	r.rules[name] = rule
}

// Get looks a rule up by name.
func (r *Registry[T]) Get(name string) (T, bool) {
	rule, ok := r.rules[name]
	return rule, ok
}

// Names returns rule names in insertion order.
func (r *Registry[T]) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry[T]) Len() int { return len(r.names) }
