package slides

import (
	sess "github.com/abhisek/lessonflow/internal/session"
)

// readyMsg is sent once the controller has been built and started.
type readyMsg struct {
	Err error
}

// eventMsg carries a controller transition into the update loop.
type eventMsg sess.Event

// eventsClosedMsg is sent once Close has ended the event stream.
type eventsClosedMsg struct{}
