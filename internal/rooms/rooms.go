// Package rooms holds the static registry of classroom channels. The set is
// fixed and compiled in; student and moderator views share the same table.
package rooms

// Room is a classroom channel that scopes questions and moderator assignment.
type Room struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var registry = []Room{
	{ID: "verdade-absoluta", Label: "Verdade Absoluta"},
	{ID: "amando-deus", Label: "Amando Deus no Mundo"},
	{ID: "familia-crista", Label: "Família Cristã"},
	{ID: "doutrina", Label: "Doutrina e Discipulado"},
	{ID: "primeira-pedro", Label: "1 Pedro"},
}

// All returns every room in registry order.
func All() []Room {
	out := make([]Room, len(registry))
	copy(out, registry)
	return out
}

// Get returns the room with the given id.
func Get(id string) (Room, bool) {
	for _, r := range registry {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// IsValid reports whether id refers to a registered room.
func IsValid(id string) bool {
	_, ok := Get(id)
	return ok
}
