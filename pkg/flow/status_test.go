package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want RunState
	}{
		{"direct state", `{"state": "RUNNING"}`, StateRunning},
		{"component state", `{"component": {"state": "STOPPED"}}`, StateStopped},
		{"disabled scheduling strategy", `{"identifier":"p1","name":"A","schedulingStrategy":"DISABLED"}`, StateDisabled},
		{"disabled strategy in envelope", `{"component":{"config":{"schedulingStrategy":"DISABLED"}}}`, StateDisabled},
		{"status run indicator", `{"status": {"runStatus": "Running"}}`, StateRunning},
		{"status snapshot indicator", `{"status": {"aggregateSnapshot": {"runStatus": "Stopped"}}}`, StateStopped},
		{"top-level run indicator", `{"runStatus": "Running"}`, StateRunning},
		{"deep component status", `{"component": {"status": {"runStatus": "Running"}}}`, StateRunning},
		{"nothing present", `{"name": "quiet"}`, StateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(mustDecode(t, tt.doc)))
		})
	}
}

func TestClassifyOrderSensitive(t *testing.T) {
	// direct state field wins over the nested status object when both exist
	obj := mustDecode(t, `{
		"state": "STOPPED",
		"status": {"runStatus": "RUNNING"}
	}`)
	assert.Equal(t, StateStopped, Classify(obj))
}

func TestClassifySynonyms(t *testing.T) {
	tests := []struct {
		raw  string
		want RunState
	}{
		{"RUNNING", StateRunning},
		{"Run", StateRunning},
		{"started", StateRunning},
		{"START", StateRunning},
		{"STOPPED", StateStopped},
		{"stop", StateStopped},
		{"DISABLED", StateDisabled},
		{"Invalid", StateDisabled},
		{"VALIDATING", StateStopped},
		{"valid", StateStopped},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			obj := mustDecode(t, `{"state": "`+tt.raw+`"}`)
			assert.Equal(t, tt.want, Classify(obj))
		})
	}
}

func TestClassifyUnmappedPassesThrough(t *testing.T) {
	// values outside the canonicalization table stay visible instead of
	// collapsing into UNKNOWN
	obj := mustDecode(t, `{"state": "migrating"}`)
	assert.Equal(t, RunState("MIGRATING"), Classify(obj))
}

func TestClassifySanitizesRawValue(t *testing.T) {
	obj := mustDecode(t, `{"state": "  running\n"}`)
	assert.Equal(t, StateRunning, Classify(obj))
}
