package led

// Patterns understood by every Controller.
const (
	PatternSolid = "solid"
	PatternBlink = "blink"
	PatternOff   = "off"
)

// Controller drives the board LEDs. Name is a board LED name as reported
// by Available.
type Controller interface {
	Set(name string, pattern string) error
	Available() []string
}
