package shared_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/traversal"
	"github.com/joe/dirnav/internal/tui/shared"
)

// TestEventBridge_ImplementsEventEmitter verifies the bridge implements EventEmitter.
func TestEventBridge_ImplementsEventEmitter(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	bridge := shared.NewEventBridge()
	defer bridge.Close()

	var emitter navigator.EventEmitter = bridge
	g.Expect(emitter).ToNot(BeNil())

	var handler traversal.ErrorHandler = bridge.EmitEntryError
	g.Expect(handler).ToNot(BeNil())
}

// TestEventBridge_MultipleEvents verifies events are received in order.
func TestEventBridge_MultipleEvents(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	bridge := shared.NewEventBridge()
	defer bridge.Close()

	eventChan := bridge.Subscribe()

	bridge.Emit(navigator.BatchReady{RequestID: 1})
	bridge.Emit(navigator.BatchReady{RequestID: 1})
	bridge.Emit(navigator.LoadFinished{RequestID: 1})

	events := make([]navigator.Event, 0, 3)
	for i := range 3 {
		select {
		case msg := <-eventChan:
			eventMsg, ok := msg.(shared.NavigatorEventMsg)
			g.Expect(ok).To(BeTrue(), "Expected NavigatorEventMsg")
			events = append(events, eventMsg.Event)
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timed out waiting for event %d", i)
		}
	}

	g.Expect(events[0]).To(BeAssignableToTypeOf(navigator.BatchReady{}))
	g.Expect(events[2]).To(BeAssignableToTypeOf(navigator.LoadFinished{}))
}

// TestEventBridge_EmitBlocksInsteadOfDropping verifies a full buffer holds the sender back.
func TestEventBridge_EmitBlocksInsteadOfDropping(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	bridge := shared.NewEventBridge()
	defer bridge.Close()

	for range shared.EventBufferSize {
		bridge.Emit(navigator.BatchReady{RequestID: 1})
	}

	sent := make(chan struct{})
	go func() {
		bridge.Emit(navigator.LoadFinished{RequestID: 1})
		close(sent)
	}()

	g.Consistently(sent, 50*time.Millisecond).ShouldNot(BeClosed())

	<-bridge.Subscribe()
	g.Eventually(sent).Should(BeClosed())

	received := 0
	for range shared.EventBufferSize {
		<-bridge.Subscribe()
		received++
	}
	g.Expect(received).To(Equal(shared.EventBufferSize), "nothing was dropped")
}

// TestEventBridge_CloseReleasesSenders verifies Close unblocks a blocked Emit.
func TestEventBridge_CloseReleasesSenders(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	bridge := shared.NewEventBridge()

	for range shared.EventBufferSize {
		bridge.Emit(navigator.BatchReady{RequestID: 1})
	}

	sent := make(chan struct{})
	go func() {
		bridge.Emit(navigator.LoadFinished{RequestID: 1})
		close(sent)
	}()

	bridge.Close()
	bridge.Close()

	g.Eventually(sent).Should(BeClosed())
	g.Expect(bridge.Closed()).To(BeTrue())
	g.Expect(bridge.ListenCmd()()).To(Or(BeNil(), BeAssignableToTypeOf(shared.NavigatorEventMsg{})))
}

// TestEventBridge_ListenCmd verifies the listen command works with bubble tea.
func TestEventBridge_ListenCmd(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	bridge := shared.NewEventBridge()
	defer bridge.Close()

	cmd := bridge.ListenCmd()
	g.Expect(cmd).ToNot(BeNil())

	go func() {
		time.Sleep(10 * time.Millisecond)
		bridge.EmitEntryError(traversal.EntryError{Path: "/x", Err: errors.New("permission denied")})
	}()

	msg := cmd()
	errMsg, ok := msg.(shared.EntryErrorMsg)
	g.Expect(ok).To(BeTrue())
	g.Expect(errMsg.Err.Path).To(Equal("/x"))
}
