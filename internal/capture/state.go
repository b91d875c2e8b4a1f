package capture

// State is the session lifecycle: Disconnected, then Connected while frames
// flow, then Stopped. Only the types in this package implement it.
type State interface {
	isState()
	String() string
}

// Disconnected is the state before the device is opened.
type Disconnected struct{}

// Connected holds the open frame source.
type Connected struct {
	Source Source
}

// Stopped is terminal. The source, if any, has been released.
type Stopped struct {
	Reason string
}

func (Disconnected) isState() {}
func (Connected) isState()    {}
func (Stopped) isState()      {}

func (Disconnected) String() string { return "disconnected" }
func (Connected) String() string    { return "connected" }
func (Stopped) String() string      { return "stopped" }
