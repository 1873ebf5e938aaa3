package data

// Map is a keyed bag of values, addressable from templates by key.
type Map map[string]any

var (
	_ Viewable  = Map{}
	_ Existence = Map{}
)

func (m Map) HasMember(name string) bool {
	_, ok := m[name]
	return ok
}

func (m Map) Obj(name string, args []any) (any, error) {
	return m[name], nil
}

// ForTemplate renders nothing; maps are containers, not content.
func (m Map) ForTemplate() string {
	return ""
}

func (m Map) Exists() bool {
	return true
}
