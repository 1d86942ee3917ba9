package autocomplete

import "github.com/bastiangx/docserve/pkg/interaction"

// Command is one of the closed set of commands that support autocomplete.
type Command string

const (
	CommandDocs        Command = "docs"
	CommandDocsDev     Command = "docsdev"
	CommandTag         Command = "tag"
	CommandGuide       Command = "guide"
	CommandDiscordDocs Command = "discorddocs"
	CommandMDN         Command = "mdn"
	CommandDTypes      Command = "dtypes"
)

// NoFilter is the dtypes version selector meaning "search every version".
const NoFilter = "no-filter"

var commands = []Command{
	CommandDocs,
	CommandDocsDev,
	CommandTag,
	CommandGuide,
	CommandDiscordDocs,
	CommandMDN,
	CommandDTypes,
}

// Commands returns every known command.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// ParseCommand maps an interaction's command name onto the closed set.
func ParseCommand(name string) (Command, bool) {
	for _, c := range commands {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

var schemas = map[Command]interaction.Schema{
	CommandDocs: {
		interaction.String("query"),
		interaction.Enum("source"),
	},
	CommandDocsDev: {
		interaction.String("query"),
	},
	CommandTag: {
		interaction.String("query"),
	},
	CommandGuide: {
		interaction.String("query"),
	},
	CommandDiscordDocs: {
		interaction.String("query"),
	},
	CommandMDN: {
		interaction.String("query"),
	},
	CommandDTypes: {
		interaction.String("query"),
		interaction.Enum("version", NoFilter, "v10", "v9", "v8", "v6"),
	},
}

// Schema returns the options c declares.
func (c Command) Schema() interaction.Schema {
	return schemas[c]
}
