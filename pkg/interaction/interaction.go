/*
Package interaction models the inbound interaction payload and projects its option tree into flat arguments.

An autocomplete interaction carries the invoked command name and an ordered, possibly nested option tree:

	{"type": 4, "data": {"name": "dtypes", "options": [
		{"name": "query", "type": 3, "value": "Client", "focused": true},
		{"name": "version", "type": 3, "value": "v10"}
	]}}

Sub-command and sub-command-group nodes carry their own options instead of a value.
Extract walks those levels and keeps only the names a command's Schema declares.
*/
package interaction

// Type is the interaction type sent by the platform.
type Type int

const (
	TypePing         Type = 1
	TypeCommand      Type = 2
	TypeComponent    Type = 3
	TypeAutocomplete Type = 4
)

// OptionType is the platform's option type tag.
type OptionType int

const (
	OptionSubCommand      OptionType = 1
	OptionSubCommandGroup OptionType = 2
	OptionString          OptionType = 3
	OptionInteger         OptionType = 4
	OptionBoolean         OptionType = 5
	OptionNumber          OptionType = 10
)

// Option is one node of the option tree.
type Option struct {
	Name    string     `json:"name" msgpack:"name"`
	Type    OptionType `json:"type" msgpack:"type"`
	Value   any        `json:"value,omitempty" msgpack:"value"`
	Focused bool       `json:"focused,omitempty" msgpack:"focused,omitempty"`
	Options []Option   `json:"options,omitempty" msgpack:"options,omitempty"`
}

// Data is the command part of an interaction.
type Data struct {
	ID      string   `json:"id,omitempty" msgpack:"id,omitempty"`
	Name    string   `json:"name" msgpack:"name"`
	Options []Option `json:"options,omitempty" msgpack:"options,omitempty"`
}

// Interaction is a single inbound request. It is read-only once decoded.
type Interaction struct {
	ID    string `json:"id,omitempty" msgpack:"id,omitempty"`
	Type  Type   `json:"type" msgpack:"type"`
	Token string `json:"token,omitempty" msgpack:"token,omitempty"`
	Data  Data   `json:"data" msgpack:"data"`
}

func isGroup(t OptionType) bool {
	return t == OptionSubCommand || t == OptionSubCommandGroup
}
