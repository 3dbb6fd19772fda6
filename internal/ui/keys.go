package ui

// Action is what a key press does in the document browser.
type Action string

const (
	ActionNone      Action = ""
	ActionDown      Action = "down"
	ActionUp        Action = "up"
	ActionTop       Action = "top"
	ActionBottom    Action = "bottom"
	ActionFilter    Action = "filter"
	ActionClear     Action = "clear"
	ActionDetail    Action = "detail"
	ActionBack      Action = "back"
	ActionReload    Action = "reload"
	ActionCopy      Action = "copy"
	ActionQuit      Action = "quit"
	ActionForceQuit Action = "force_quit"
)

// KeyBindings maps key strings, as reported by tea.KeyPressMsg.String, to
// actions. It can be replaced before the browser starts.
var KeyBindings = map[string]Action{
	"j":      ActionDown,
	"down":   ActionDown,
	"k":      ActionUp,
	"up":     ActionUp,
	"g":      ActionTop,
	"home":   ActionTop,
	"G":      ActionBottom,
	"end":    ActionBottom,
	"/":      ActionFilter,
	"esc":    ActionClear,
	"enter":  ActionDetail,
	"r":      ActionReload,
	"y":      ActionCopy,
	"q":      ActionQuit,
	"ctrl+c": ActionForceQuit,
}

// detailBindings apply while a document is open.
var detailBindings = map[string]Action{
	"esc":       ActionBack,
	"enter":     ActionBack,
	"backspace": ActionBack,
	"h":         ActionBack,
	"y":         ActionCopy,
	"q":         ActionQuit,
	"ctrl+c":    ActionForceQuit,
}

// ActionFor returns the table-mode action bound to key.
func ActionFor(key string) Action {
	return KeyBindings[key]
}

func detailActionFor(key string) Action {
	return detailBindings[key]
}
