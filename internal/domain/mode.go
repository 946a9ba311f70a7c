package domain

// Mode is the conversational mode a session is operating in.
type Mode string

const (
	ModeReflect Mode = "reflect"
	ModeRecover Mode = "recover"
	ModeRebuild Mode = "rebuild"
	ModeEvolve  Mode = "evolve"
)

// DefaultMode is the mode every new session starts in and the fallback
// for anything unclassifiable.
const DefaultMode = ModeReflect

// Modes lists all valid modes.
func Modes() []Mode {
	return []Mode{ModeReflect, ModeRecover, ModeRebuild, ModeEvolve}
}

// IsValid reports whether m is one of the fixed mode values.
func (m Mode) IsValid() bool {
	switch m {
	case ModeReflect, ModeRecover, ModeRebuild, ModeEvolve:
		return true
	}
	return false
}

// ParseMode maps a string to a Mode, falling back to DefaultMode.
func ParseMode(s string) Mode {
	m := Mode(s)
	if m.IsValid() {
		return m
	}
	return DefaultMode
}
