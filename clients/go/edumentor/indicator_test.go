package edumentor

import (
	"reflect"
	"testing"
)

func recordStates(t *testing.T) (*Indicator, *[]IndicatorState) {
	t.Helper()
	var seen []IndicatorState
	ind := NewIndicator(func(s IndicatorState) {
		seen = append(seen, s)
	})
	return ind, &seen
}

func TestIndicatorSuccessfulExchange(t *testing.T) {
	ind, seen := recordStates(t)

	if !ind.Submit() {
		t.Fatal("Submit from Idle should transition")
	}
	if !ind.StreamingStarted() {
		t.Fatal("first chunk should transition Waiting to Streaming")
	}
	if !ind.Release() {
		t.Fatal("terminal processing should return to Idle")
	}

	want := []IndicatorState{StateWaiting, StateStreaming, StateIdle}
	if !reflect.DeepEqual(*seen, want) {
		t.Fatalf("state sequence = %v, want %v", *seen, want)
	}
}

func TestIndicatorFailureBeforeContent(t *testing.T) {
	ind, seen := recordStates(t)

	ind.Submit()
	if !ind.Failed() {
		t.Fatal("error with no content should transition Waiting to Failed")
	}
	ind.Release()

	want := []IndicatorState{StateWaiting, StateFailed, StateIdle}
	if !reflect.DeepEqual(*seen, want) {
		t.Fatalf("state sequence = %v, want %v", *seen, want)
	}
}

func TestIndicatorInvalidTransitionsIgnored(t *testing.T) {
	ind := NewIndicator(nil)

	if ind.StreamingStarted() {
		t.Fatal("StreamingStarted from Idle should not transition")
	}
	if ind.Failed() {
		t.Fatal("Failed from Idle should not transition")
	}
	if ind.Release() {
		t.Fatal("Release from Idle should not transition")
	}

	ind.Submit()
	ind.StreamingStarted()
	if ind.Failed() {
		t.Fatal("Failed from Streaming should not transition; content already arrived")
	}
	if ind.State() != StateStreaming {
		t.Fatalf("state = %v, want Streaming", ind.State())
	}
}

func TestIndicatorReusableAcrossExchanges(t *testing.T) {
	ind := NewIndicator(nil)

	for i := 0; i < 3; i++ {
		if !ind.Submit() {
			t.Fatalf("exchange %d: Submit failed", i)
		}
		ind.StreamingStarted()
		ind.Release()
		if ind.State() != StateIdle {
			t.Fatalf("exchange %d: not idle after release", i)
		}
	}
}
