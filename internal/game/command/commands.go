// Package command provides the command registry, parser, built-in command
// definitions, and the dispatcher that runs them against a character.
package command

// Categories for organizing commands.
const (
	CategoryDice      = "dice"
	CategoryHealth    = "health"
	CategoryCharacter = "character"
	CategorySystem    = "system"
)

// Handler identifiers mapping commands to dispatch functions.
const (
	HandlerRoll  = "roll"
	HandlerHurt  = "hurt"
	HandlerHeal  = "heal"
	HandlerStats = "stats"
	HandlerSpend = "spend"
	HandlerGain  = "gain"
	HandlerPump  = "pump"
	HandlerSheet = "sheet"
	HandlerHelp  = "help"
	HandlerQuit  = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help.
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (dice, health, character, system).
	Category string
	// Handler selects the dispatch function.
	Handler string
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "+roll", Aliases: []string{"roll", "r"}, Usage: "<expression> [vs <difficulty>]", Help: "Roll a dice pool, e.g. +roll stre+dex+3-2 vs 7", Category: CategoryDice, Handler: HandlerRoll},

		{Name: "+hurt", Aliases: []string{"hurt"}, Usage: "[<name>=]<amount><b|l|a>", Help: "Apply bashing, lethal or aggravated damage", Category: CategoryHealth, Handler: HandlerHurt},
		{Name: "+heal", Aliases: []string{"heal"}, Usage: "[<name>=]<amount><b|l|a>", Help: "Heal damage of a class, spilling into lesser classes", Category: CategoryHealth, Handler: HandlerHeal},

		{Name: "+stats", Aliases: []string{"stats", "stat", "+stat"}, Usage: "<stat>[(<instance>)][/<category>]=[+-]<value> | reset", Help: "Set, adjust or remove a stat (/temp sets the temporary value)", Category: CategoryCharacter, Handler: HandlerStats},
		{Name: "+spend", Aliases: []string{"spend"}, Usage: "<pool>=<amount>[/<reason>]", Help: "Spend points from a pool", Category: CategoryCharacter, Handler: HandlerSpend},
		{Name: "+gain", Aliases: []string{"gain"}, Usage: "<pool>=<amount>[/<reason>]", Help: "Regain points in a pool", Category: CategoryCharacter, Handler: HandlerGain},
		{Name: "+pump", Aliases: []string{"pump"}, Usage: "<strength|dexterity|stamina>=<amount>", Help: "Spend blood to boost a physical attribute for an hour", Category: CategoryCharacter, Handler: HandlerPump},
		{Name: "+sheet", Aliases: []string{"sheet"}, Usage: "[<name>]", Help: "Show a character sheet", Category: CategoryCharacter, Handler: HandlerSheet},

		{Name: "help", Aliases: []string{"?", "+help"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Leave the shell", Category: CategorySystem, Handler: HandlerQuit},
	}
}
