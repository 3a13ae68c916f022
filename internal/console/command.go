// Package console is the line-oriented terminal client: it parses player
// commands, drives the engine, and renders engine events.
package console

import (
	"fmt"
	"sort"
	"strings"
)

// Categories for organizing commands in help output.
const (
	CategoryStory     = "story"
	CategoryCombat    = "combat"
	CategoryCharacter = "character"
	CategorySession   = "session"
	CategorySystem    = "system"
)

// Handler identifiers mapping commands to console actions.
const (
	HandlerDo         = "do"
	HandlerSpeak      = "speak"
	HandlerStory      = "story"
	HandlerRoll       = "roll"
	HandlerAction     = "action"
	HandlerUse        = "use"
	HandlerDrop       = "drop"
	HandlerTravel     = "travel"
	HandlerIllustrate = "illustrate"
	HandlerStatus     = "status"
	HandlerInventory  = "inventory"
	HandlerQuests     = "quests"
	HandlerMap        = "map"
	HandlerCombat     = "combat"
	HandlerSpend      = "spend"
	HandlerSettings   = "settings"
	HandlerNew        = "new"
	HandlerLoad       = "load"
	HandlerList       = "list"
	HandlerDelete     = "delete"
	HandlerRestart    = "restart"
	HandlerHelp       = "help"
	HandlerQuit       = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the expected arguments.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler selects the console action.
	Handler string
}

// BuiltinCommands returns every console command.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "faire", Aliases: []string{"f", "do"}, Usage: "<action>", Help: "Décrire une action", Category: CategoryStory, Handler: HandlerDo},
		{Name: "dire", Aliases: []string{"d", "say"}, Usage: "<paroles>", Help: "Parler", Category: CategoryStory, Handler: HandlerSpeak},
		{Name: "histoire", Aliases: []string{"h", "story"}, Usage: "<texte>", Help: "Orienter le récit", Category: CategoryStory, Handler: HandlerStory},
		{Name: "jet", Aliases: []string{"roll"}, Help: "Lancer le jet de compétence demandé", Category: CategoryStory, Handler: HandlerRoll},
		{Name: "illustrer", Aliases: []string{"img"}, Usage: "[message]", Help: "Illustrer un message (le dernier par défaut)", Category: CategoryStory, Handler: HandlerIllustrate},
		{Name: "voyager", Aliases: []string{"travel"}, Usage: "<lieu>", Help: "Voyage rapide vers un lieu découvert", Category: CategoryStory, Handler: HandlerTravel},

		{Name: "action", Aliases: []string{"a"}, Usage: "<action> [cible]", Help: "Utiliser une action de combat", Category: CategoryCombat, Handler: HandlerAction},
		{Name: "combat", Aliases: []string{"c"}, Help: "Afficher le combat en cours", Category: CategoryCombat, Handler: HandlerCombat},

		{Name: "statut", Aliases: []string{"st", "status"}, Help: "Afficher le personnage", Category: CategoryCharacter, Handler: HandlerStatus},
		{Name: "inventaire", Aliases: []string{"i", "inv"}, Help: "Afficher l'inventaire", Category: CategoryCharacter, Handler: HandlerInventory},
		{Name: "utiliser", Aliases: []string{"use"}, Usage: "<objet>", Help: "Utiliser un objet", Category: CategoryCharacter, Handler: HandlerUse},
		{Name: "jeter", Aliases: []string{"drop"}, Usage: "<objet>", Help: "Jeter un objet", Category: CategoryCharacter, Handler: HandlerDrop},
		{Name: "quetes", Aliases: []string{"qu", "quests"}, Help: "Afficher le journal de quêtes", Category: CategoryCharacter, Handler: HandlerQuests},
		{Name: "carte", Aliases: []string{"map"}, Help: "Afficher les lieux connus", Category: CategoryCharacter, Handler: HandlerMap},
		{Name: "stat", Aliases: nil, Usage: "<cha|int|tec|atk> <points>", Help: "Dépenser des points de caractéristique", Category: CategoryCharacter, Handler: HandlerSpend},

		{Name: "nouvelle", Aliases: []string{"new"}, Help: "Créer une nouvelle aventure", Category: CategorySession, Handler: HandlerNew},
		{Name: "charger", Aliases: []string{"load"}, Usage: "<id>", Help: "Charger une partie", Category: CategorySession, Handler: HandlerLoad},
		{Name: "liste", Aliases: []string{"ls"}, Help: "Lister les parties", Category: CategorySession, Handler: HandlerList},
		{Name: "supprimer", Aliases: []string{"rm"}, Usage: "<id>", Help: "Supprimer une partie", Category: CategorySession, Handler: HandlerDelete},
		{Name: "recommencer", Aliases: []string{"restart"}, Help: "Revenir à l'écran de départ", Category: CategorySession, Handler: HandlerRestart},
		{Name: "reglage", Aliases: []string{"set"}, Usage: "<clé> <valeur>", Help: "Modifier un réglage (temperature, top_p, top_k, max_tokens, ton, pov, maturite, instruction)", Category: CategorySession, Handler: HandlerSettings},

		{Name: "aide", Aliases: []string{"help", "?"}, Help: "Afficher l'aide", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quitter", Aliases: []string{"quit", "exit"}, Help: "Quitter", Category: CategorySystem, Handler: HandlerQuit},
	}
}

// Registry maps command names and aliases to Command definitions.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: No two commands may share a canonical name or alias.
// Postcondition: Returns a Registry or an error on name/alias collisions.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}
	for i := range cmds {
		cmd := &cmds[i]
		if _, exists := r.commands[cmd.Name]; exists {
			return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
		}
		if _, exists := r.aliases[cmd.Name]; exists {
			return nil, fmt.Errorf("command name %q conflicts with an existing alias", cmd.Name)
		}
		r.commands[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			if _, exists := r.commands[alias]; exists {
				return nil, fmt.Errorf("alias %q conflicts with a command name", alias)
			}
			if existing, exists := r.aliases[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, cmd.Name)
			}
			r.aliases[alias] = cmd.Name
		}
	}
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Resolve looks up a command by name or alias.
func (r *Registry) Resolve(name string) (*Command, bool) {
	if cmd, ok := r.commands[name]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[name]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// CommandsByCategory returns commands grouped by category, each group sorted by name.
func (r *Registry) CommandsByCategory() map[string][]*Command {
	categories := make(map[string][]*Command)
	for _, cmd := range r.commands {
		categories[cmd.Category] = append(categories[cmd.Category], cmd)
	}
	for _, cmds := range categories {
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	}
	return categories
}

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command, inner spacing preserved.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}
	cmd, rest, found := strings.Cut(line, " ")
	if !found {
		return ParseResult{Command: strings.ToLower(line)}
	}
	rest = strings.TrimSpace(rest)
	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}
	return ParseResult{Command: strings.ToLower(cmd), Args: args, RawArgs: rest}
}
