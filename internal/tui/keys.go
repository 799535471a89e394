package tui

// Keybinding constants
const (
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
	KeyQuit     = "q"
	KeyCtrlC    = "ctrl+c"
	KeyEsc      = "esc"
	KeyAdd      = "a"
	KeyEdit     = "e"
	KeyDelete   = "d"
	KeyRun      = "r"
	KeySample   = "l"
	KeyClear    = "x"
	KeySettings = "s"
	KeyLeft     = "left"
	KeyRight    = "right"
)

// HelpView returns a one-line help bar with common keybindings.
func HelpView() string {
	return StyleHelp.Render("a: add | e: edit | d: delete | r: schedule | l: sample | x: clear | s: settings | Tab: focus | ←/→: scroll chart | q: quit")
}
