package amqp

import (
	"testing"
)

func TestEntityChangedMessageRoundTrip(t *testing.T) {
	msg := NewEntityChangedMessage("installments", "in-1", OpUpdated)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	back, err := EntityChangedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if back.Table != "installments" || back.ID != "in-1" || back.Op != OpUpdated {
		t.Errorf("round trip = %+v, want table=installments id=in-1 op=updated", back)
	}
	if back.Timestamp.IsZero() {
		t.Error("timestamp not preserved")
	}
}

func TestEntityChangedMessageFromJSONInvalid(t *testing.T) {
	if _, err := EntityChangedMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
