package engine

import "sort"

// DesireID is the interned handle of a desire name.
type DesireID int

// EmotionID is the interned handle of an emotion name.
type EmotionID int

// Registry interns names into dense, stable handles. A handle is never
// reused or removed. The zero value is ready to use.
type Registry[ID ~int] struct {
	ids    map[string]ID
	names  []string
	sorted []ID // handles ordered by name
}

// Intern returns the handle for name, registering it on first sight.
// added reports whether this call registered it.
func (r *Registry[ID]) Intern(name string) (id ID, added bool) {
	if id, ok := r.ids[name]; ok {
		return id, false
	}
	if r.ids == nil {
		r.ids = make(map[string]ID)
	}
	id = ID(len(r.names))
	r.ids[name] = id
	r.names = append(r.names, name)

	i := sort.Search(len(r.sorted), func(i int) bool {
		return r.names[r.sorted[i]] >= name
	})
	r.sorted = append(r.sorted, 0)
	copy(r.sorted[i+1:], r.sorted[i:])
	r.sorted[i] = id
	return id, true
}

// Lookup returns the handle for name without registering it.
func (r *Registry[ID]) Lookup(name string) (ID, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Name returns the name behind a handle.
func (r *Registry[ID]) Name(id ID) string {
	return r.names[id]
}

// Len returns the number of registered names.
func (r *Registry[ID]) Len() int {
	return len(r.names)
}

// Sorted returns all handles ordered by name. The slice is owned by the
// registry and must not be modified.
func (r *Registry[ID]) Sorted() []ID {
	return r.sorted
}
