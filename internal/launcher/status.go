package launcher

import (
	"fmt"
	"io"
	"log"
)

// Status message types on the readiness channel.
const (
	StatusTypeStatus = "status"
	StatusTypeFault  = "fault"

	StatusReady = "ready"
	StatusExit  = "exit"
)

// StatusMessage is one frame on the optional readiness channel. The child
// reports "ready" once its transport is listening, or a fault with the
// exception details if startup failed.
type StatusMessage struct {
	// Type is "status" or "fault".
	Type string `msgpack:"type"`

	// Status carries "ready" or "exit" for type "status".
	Status string `msgpack:"status,omitempty"`

	// Fault carries the failure details for type "fault".
	Fault *Fault `msgpack:"fault,omitempty"`
}

// Fault describes a startup failure reported by the Python server before it
// began serving, including the interpreter traceback when available.
type Fault struct {
	// Exception is the Python exception class name (e.g. "ValueError").
	Exception string `msgpack:"exception"`

	// Message is the exception message.
	Message string `msgpack:"message"`

	// Traceback is the full Python traceback, possibly empty.
	Traceback string `msgpack:"traceback,omitempty"`
}

// Error formats the fault as a Go error.
func (f *Fault) Error() string {
	if f.Traceback != "" {
		return fmt.Sprintf("%s: %s\n%s", f.Exception, f.Message, f.Traceback)
	}
	return fmt.Sprintf("%s: %s", f.Exception, f.Message)
}

// readStatus consumes frames from the readiness channel until the child
// reports ready, reports a fault, or closes its end. Exactly one value is
// delivered on ready or faults before the goroutine exits.
func readStatus(transport *FrameTransport, serializer Serializer, ready chan struct{}, faults chan<- *Fault) {
	defer transport.Close()
	// Closing ready marks the handshake as over: a child that exits or
	// never writes is indistinguishable from one that skipped the protocol.
	defer close(ready)

	for {
		frame, err := transport.Receive()
		if err != nil {
			if err != io.EOF {
				log.Printf("status channel read error: %v", err)
			}
			return
		}

		var msg StatusMessage
		if err := serializer.Unmarshal(frame, &msg); err != nil {
			log.Printf("status channel decode error: %v", err)
			continue
		}

		switch msg.Type {
		case StatusTypeStatus:
			if msg.Status == StatusReady {
				ready <- struct{}{}
				return
			}
			if msg.Status == StatusExit {
				return
			}
		case StatusTypeFault:
			if msg.Fault != nil {
				faults <- msg.Fault
				return
			}
		default:
			log.Printf("unknown status message type: %q", msg.Type)
		}
	}
}
