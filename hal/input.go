package hal

type hostInput struct {
	ch chan Event

	// Window backend state.
	lastW, lastH   int
	lastScale      float64
	lastX, lastY   int
	dragX, dragY   int
	dragging       bool
	pointerStarted bool
}

func newHostInput() *hostInput {
	return &hostInput{ch: make(chan Event, 64)}
}

func (in *hostInput) Events() <-chan Event { return in.ch }

// emit queues ev, dropping it when the queue is full.
func (in *hostInput) emit(ev Event) {
	select {
	case in.ch <- ev:
	default:
	}
}
