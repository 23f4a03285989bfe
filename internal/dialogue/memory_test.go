package dialogue

import (
	"fmt"
	"strings"
	"testing"
)

func TestMemoryEvictsOldestTurn(t *testing.T) {
	m := NewMemory(3, 5)

	for i := 0; i < 5; i++ {
		m.AddTurn(fmt.Sprintf("user %d", i), fmt.Sprintf("bot %d", i), IntentGreeting, "greeting")
	}
	if got := m.TurnCount(); got != 3 {
		t.Fatalf("TurnCount() = %d, want 3", got)
	}
	last, ok := m.LastTurn()
	if !ok || last.UserMessage != "user 4" {
		t.Fatalf("LastTurn() = %+v, %v; want user 4", last, ok)
	}
	snap := m.Snapshot()
	if snap.Turns[0].UserMessage != "user 2" {
		t.Fatalf("oldest turn = %q, want %q", snap.Turns[0].UserMessage, "user 2")
	}
}

func TestMemoryContext(t *testing.T) {
	m := NewMemory(10, 2)

	if got := m.Context(0); got != "No previous context." {
		t.Fatalf("Context() = %q, want sentinel", got)
	}

	m.AddTurn("one", "reply one", IntentGreeting, "greeting")
	m.AddTurn("two", "reply two", IntentGreeting, "greeting")
	m.AddTurn("three", "reply three", IntentGreeting, "greeting")

	got := m.Context(0)
	if !strings.HasPrefix(got, "Recent conversation history:") {
		t.Fatalf("Context() = %q, want history header", got)
	}
	if strings.Contains(got, "one") {
		t.Fatalf("Context() includes turn outside the window: %q", got)
	}
	if !strings.Contains(got, "User: three") || !strings.Contains(got, "Bot: reply three") {
		t.Fatalf("Context() missing latest turn: %q", got)
	}
}

func TestMemorySlotsPersistAcrossTurns(t *testing.T) {
	m := NewMemory(10, 5)

	m.UpdateSlots(SlotUpdate{Location: "Petaling Jaya"})
	m.AddTurn("where are your outlets in pj", "Found outlets", IntentFindOutlet, "search_outlets")

	m.UpdateSlots(SlotUpdate{OutletName: "SS 2"})
	slots := m.SlotsCopy()
	if slots.Location != "Petaling Jaya" {
		t.Fatalf("Location = %q, want it preserved across updates", slots.Location)
	}
	if slots.OutletName != "SS 2" {
		t.Fatalf("OutletName = %q, want %q", slots.OutletName, "SS 2")
	}

	// Empty fields never clear existing values.
	m.UpdateSlots(SlotUpdate{QueryType: "hours"})
	if got := m.SlotsCopy().Location; got != "Petaling Jaya" {
		t.Fatalf("Location = %q after unrelated update, want unchanged", got)
	}
}

func TestMemoryReset(t *testing.T) {
	m := NewMemory(10, 5)
	oldID := m.SessionID()

	m.UpdateSlots(SlotUpdate{Location: "Klang"})
	m.AddTurn("hi", "Hello!", IntentGreeting, "greeting")
	m.SetState(StateCompleted)

	m.Reset()
	if m.TurnCount() != 0 {
		t.Fatalf("TurnCount() = %d after reset, want 0", m.TurnCount())
	}
	if got := m.SlotsCopy(); got != (Slots{}) {
		t.Fatalf("slots = %+v after reset, want zero", got)
	}
	if m.State() != StateIdle {
		t.Fatalf("State() = %q after reset, want %q", m.State(), StateIdle)
	}
	if m.SessionID() == oldID {
		t.Fatalf("SessionID() unchanged after reset")
	}
}

func TestMemorySnapshotIsValueCopy(t *testing.T) {
	m := NewMemory(10, 5)
	m.AddTurn("hi", "Hello!", IntentGreeting, "greeting")

	snap := m.Snapshot()
	snap.Turns[0].UserMessage = "mutated"

	fresh := m.Snapshot()
	if fresh.Turns[0].UserMessage != "hi" {
		t.Fatalf("snapshot mutation leaked into memory: %q", fresh.Turns[0].UserMessage)
	}
}

func TestMemoryTurnSnapshotsSlots(t *testing.T) {
	m := NewMemory(10, 5)

	m.UpdateSlots(SlotUpdate{Location: "Klang"})
	m.AddTurn("klang outlets", "Found outlets", IntentFindOutlet, "search_outlets")
	m.UpdateSlots(SlotUpdate{Location: "Shah Alam"})

	last, _ := m.LastTurn()
	if last.Slots.Location != "Klang" {
		t.Fatalf("turn slot snapshot = %q, want value at append time", last.Slots.Location)
	}
}
