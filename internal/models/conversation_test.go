package models

import "testing"

func TestPairKeyIsOrderIndependent(t *testing.T) {
	if PairKey("alice", "bob") != PairKey("bob", "alice") {
		t.Fatalf("expected both participants to derive the same key")
	}
	if PairKey("alice", "bob") != "alice_bob" {
		t.Fatalf("expected sorted ids joined with underscore, got %q", PairKey("alice", "bob"))
	}
}

func TestHasParticipant(t *testing.T) {
	convo := Conversation{Key: "a_b", User1ID: "a", User2ID: "b"}

	if !convo.HasParticipant("a") || !convo.HasParticipant("b") {
		t.Fatalf("expected both users to be participants")
	}
	if convo.HasParticipant("c") {
		t.Fatalf("expected outsider to be rejected")
	}
}
