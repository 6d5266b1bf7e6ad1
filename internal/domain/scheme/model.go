package scheme

import "sort"

// Placeholder is shown whenever a scheme label cannot be resolved.
const Placeholder = "—"

// Document field names in the schemes collection.
const (
	FieldName  = "name"
	FieldTitle = "title"
)

// Scheme is a read-only reference entry used to label members.
type Scheme struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
}

// DisplayName prefers Name, then Title, then the identifier itself.
func (s Scheme) DisplayName() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Title != "":
		return s.Title
	default:
		return s.ID
	}
}

// Fields returns the document payload for seeding.
func (s Scheme) Fields() map[string]any {
	fields := map[string]any{}
	if s.Name != "" {
		fields[FieldName] = s.Name
	}
	if s.Title != "" {
		fields[FieldTitle] = s.Title
	}
	return fields
}

// FromFields builds a Scheme from a stored document.
func FromFields(id string, fields map[string]any) Scheme {
	s := Scheme{ID: id}
	if v, ok := fields[FieldName].(string); ok {
		s.Name = v
	}
	if v, ok := fields[FieldTitle].(string); ok {
		s.Title = v
	}
	return s
}

// Lookup maps scheme identifiers to schemes.
type Lookup map[string]Scheme

// Label resolves a display label, falling back to Placeholder for a nil
// lookup or an unknown identifier.
func (l Lookup) Label(id string) string {
	if l == nil {
		return Placeholder
	}
	s, ok := l[id]
	if !ok {
		return Placeholder
	}
	return s.DisplayName()
}

// Sorted returns the schemes ordered by identifier.
func (l Lookup) Sorted() []Scheme {
	out := make([]Scheme, 0, len(l))
	for _, s := range l {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
