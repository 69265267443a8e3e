package launcher

import (
	"io"
	"os"
	"testing"
	"time"
)

func TestFrameTransportRoundTrip(t *testing.T) {
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	sender := NewFrameTransport(nil, writer)
	receiver := NewFrameTransport(reader, nil)
	defer receiver.Close()

	payloads := [][]byte{
		[]byte("first"),
		[]byte(""),
		make([]byte, 64*1024),
	}

	go func() {
		for _, p := range payloads {
			if err := sender.Send(p); err != nil {
				t.Errorf("Send failed: %v", err)
			}
		}
		sender.Close()
	}()

	for i, want := range payloads {
		got, err := receiver.Receive()
		if err != nil {
			t.Fatalf("Receive %d failed: %v", i, err)
		}
		if len(got) != len(want) {
			t.Errorf("Frame %d: expected %d bytes, got %d", i, len(want), len(got))
		}
	}

	if _, err := receiver.Receive(); err != io.EOF {
		t.Errorf("Expected EOF after writer close, got %v", err)
	}
}

// sendStatus marshals and frames a StatusMessage onto the pipe.
func sendStatus(t *testing.T, transport *FrameTransport, msg StatusMessage) {
	t.Helper()
	data, err := MsgpackSerializer{}.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := transport.Send(data); err != nil {
		t.Fatal(err)
	}
}

func TestReadStatusReady(t *testing.T) {
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	ready := make(chan struct{}, 1)
	faults := make(chan *Fault, 1)
	go readStatus(NewFrameTransport(reader, nil), MsgpackSerializer{}, ready, faults)

	sender := NewFrameTransport(nil, writer)
	sendStatus(t, sender, StatusMessage{Type: StatusTypeStatus, Status: StatusReady})
	sender.Close()

	select {
	case <-ready:
	case fault := <-faults:
		t.Fatalf("Unexpected fault: %v", fault)
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for ready")
	}
}

func TestReadStatusFault(t *testing.T) {
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	ready := make(chan struct{}, 1)
	faults := make(chan *Fault, 1)
	go readStatus(NewFrameTransport(reader, nil), MsgpackSerializer{}, ready, faults)

	sender := NewFrameTransport(nil, writer)
	sendStatus(t, sender, StatusMessage{
		Type: StatusTypeFault,
		Fault: &Fault{
			Exception: "ValueError",
			Message:   "APARAVI_API_KEY environment variable is required",
			Traceback: "Traceback (most recent call last):\n  ...",
		},
	})
	sender.Close()

	select {
	case fault := <-faults:
		if fault.Exception != "ValueError" {
			t.Errorf("Expected ValueError, got %s", fault.Exception)
		}
		if fault.Error() == "" {
			t.Error("Expected non-empty fault error string")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for fault")
	}
}

func TestReadStatusEOFClosesReady(t *testing.T) {
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	ready := make(chan struct{}, 1)
	faults := make(chan *Fault, 1)
	go readStatus(NewFrameTransport(reader, nil), MsgpackSerializer{}, ready, faults)

	// Child exits without ever writing: reader sees EOF and the handshake
	// ends with the ready channel closed.
	writer.Close()

	select {
	case _, ok := <-ready:
		if ok {
			t.Error("Expected closed ready channel, got a value")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for handshake to end")
	}
}

func readySupervisor() *Supervisor {
	return &Supervisor{
		ready:  make(chan struct{}, 1),
		faults: make(chan *Fault, 1),
	}
}

func TestWaitReadyOnValue(t *testing.T) {
	sup := readySupervisor()
	sup.ready <- struct{}{}
	if err := sup.WaitReady(time.Second); err != nil {
		t.Errorf("Expected ready, got %v", err)
	}
}

func TestWaitReadyOnClosedChannel(t *testing.T) {
	sup := readySupervisor()
	close(sup.ready)
	if err := sup.WaitReady(time.Second); err != nil {
		t.Errorf("Expected skipped handshake to count as ready, got %v", err)
	}
}

func TestWaitReadyOnFault(t *testing.T) {
	sup := readySupervisor()
	sup.faults <- &Fault{Exception: "ValueError", Message: "bad key"}
	err := sup.WaitReady(time.Second)
	if err == nil {
		t.Fatal("Expected fault error")
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	sup := readySupervisor()
	if err := sup.WaitReady(20 * time.Millisecond); err == nil {
		t.Error("Expected timeout error")
	}
}

func TestFaultErrorFormat(t *testing.T) {
	f := &Fault{Exception: "KeyError", Message: "'missing'"}
	if got := f.Error(); got != "KeyError: 'missing'" {
		t.Errorf("Unexpected fault format: %q", got)
	}

	f.Traceback = "Traceback..."
	if got := f.Error(); got == "KeyError: 'missing'" {
		t.Error("Expected traceback to be included when present")
	}
}
