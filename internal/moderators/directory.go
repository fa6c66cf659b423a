// Package moderators holds the static credential directory and the HTTP
// handlers that gate the moderator view. Credentials double as session
// tokens: every authenticated request resolves them against the directory
// again, so removing an entry revokes access immediately.
package moderators

import "strings"

// Profile describes a moderator resolved from the directory.
type Profile struct {
	DisplayName  string `json:"display_name"`
	AssignedRoom string `json:"assigned_room"`
	IsAdmin      bool   `json:"is_admin"`
}

var directory = map[string]Profile{
	"jonatasfaria":     {DisplayName: "Jonatas Faria", AssignedRoom: "verdade-absoluta", IsAdmin: true},
	"danielmedeiros":   {DisplayName: "Daniel Medeiros", AssignedRoom: "verdade-absoluta", IsAdmin: false},
	"guilhermeparize":  {DisplayName: "Guilherme Parize", AssignedRoom: "verdade-absoluta", IsAdmin: false},
	"agnaldofaria":     {DisplayName: "Agnaldo Faria", AssignedRoom: "primeira-pedro", IsAdmin: true},
	"joaomarcoscazula": {DisplayName: "João Marcos Cazula", AssignedRoom: "primeira-pedro", IsAdmin: false},
	"elievaristo":      {DisplayName: "Eli Evaristo", AssignedRoom: "doutrina", IsAdmin: false},
	"eliezermendes":    {DisplayName: "Eliezer Mendes", AssignedRoom: "doutrina", IsAdmin: false},
	"itamarcarvalho":   {DisplayName: "Itamar Carvalho", AssignedRoom: "doutrina", IsAdmin: false},
	"enzomatsumoto":    {DisplayName: "Enzo Matsumoto", AssignedRoom: "amando-deus", IsAdmin: false},
	"joaopedrofaria":   {DisplayName: "João Pedro Faria", AssignedRoom: "amando-deus", IsAdmin: false},
	"lucascazula":      {DisplayName: "Lucas Cazula", AssignedRoom: "amando-deus", IsAdmin: false},
	"flavioamerico":    {DisplayName: "Flávio Américo", AssignedRoom: "familia-crista", IsAdmin: false},
	"mauriciopitorri":  {DisplayName: "Maurício Pitorri", AssignedRoom: "familia-crista", IsAdmin: false},
}

// Normalize applies the canonical credential form: trimmed, lowercase.
func Normalize(credential string) string {
	return strings.ToLower(strings.TrimSpace(credential))
}

// Authenticate resolves a credential against the directory. Returns nil
// when the credential does not resolve.
func Authenticate(credential string) *Profile {
	p, ok := directory[Normalize(credential)]
	if !ok {
		return nil
	}
	return &p
}
