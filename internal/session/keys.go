package session

// KeyHelp lists the key bindings understood by Dispatch
var KeyHelp = []struct {
	Key    string
	Action string
}{
	{"space", "start, pause or resume; confirm break activity"},
	{"r", "reset current phase (confirm with y/n)"},
	{"s", "skip to break"},
	{"b", "skip break"},
	{"h", "shorten long break"},
	{"e", "extend shortened break"},
	{"t", "toggle breathing exercise"},
	{"x", "skip breathing exercise"},
	{"1-4", "choose menu entry or breathing pattern"},
	{"esc", "dismiss dialog or menu, quit otherwise"},
	{"c", "clear message"},
	{"q", "quit"},
}

// KeyEscape is the escape character
const KeyEscape rune = 0x1b

// Dispatch applies a single key press. It returns false once the user asked to quit.
func (c *Controller) Dispatch(key rune) bool {
	switch key {
	case 'q', 'Q':
		c.Quit()
		return false
	case KeyEscape:
		return c.PressEscape()
	case ' ':
		c.PressSpace()
	case 'r', 'R':
		c.RequestReset()
	case 'y', 'Y':
		c.ConfirmReset()
	case 'n', 'N':
		c.CancelReset()
	case 's', 'S':
		c.SkipToBreak()
	case 'b', 'B':
		c.SkipBreak()
	case 'h', 'H':
		c.ShortenBreak()
	case 'e', 'E':
		c.ExtendBreak()
	case 't', 'T':
		c.ToggleBreathing()
	case 'x', 'X':
		c.SkipBreathing()
	case 'c', 'C':
		c.ClearMessage()
	case '1', '2', '3', '4':
		c.PressNumber(int(key - '0'))
	}
	return true
}
