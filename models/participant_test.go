package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameRow(t *testing.T) {
	ts := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	other := ts.Add(time.Minute)

	tests := []struct {
		name string
		a, b Participant
		want bool
	}{
		{"matching ids", Participant{ID: "1", Timestamp: ts}, Participant{ID: "1", Timestamp: other}, true},
		{"different ids, same timestamp", Participant{ID: "stale", Timestamp: ts}, Participant{ID: "srv", Timestamp: ts}, true},
		{"different ids, different timestamps", Participant{ID: "1", Timestamp: ts}, Participant{ID: "2", Timestamp: other}, false},
		{"no ids, same timestamp", Participant{Timestamp: ts}, Participant{Timestamp: ts}, true},
		{"no ids, different timestamps", Participant{Timestamp: ts}, Participant{Timestamp: other}, false},
		{"one id, same timestamp", Participant{Timestamp: ts}, Participant{ID: "1", Timestamp: ts}, true},
		{"zero timestamps never match", Participant{}, Participant{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameRow(tt.a, tt.b))
			assert.Equal(t, tt.want, SameRow(tt.b, tt.a))
		})
	}
}
