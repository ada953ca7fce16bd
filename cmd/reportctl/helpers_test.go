package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reportuc "github.com/johnquangdev/meeting-reporter/internal/usecase/report"
)

func TestRunBatch_KeepsOrderAndLimit(t *testing.T) {
	var inFlight, peak int32
	sources := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}

	outcomes := runBatch(context.Background(), sources, 2, func(_ context.Context, i int, source string) (*reportuc.Result, error) {
		assert.Equal(t, sources[i], source)
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)

		if source == "c.txt" {
			return nil, errors.New("boom")
		}
		return &reportuc.Result{MeetingID: strings.TrimSuffix(source, ".txt")}, nil
	})

	require.Len(t, outcomes, len(sources))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	for i, o := range outcomes {
		assert.Equal(t, sources[i], o.Source)
	}
	assert.Error(t, outcomes[2].Err)
	assert.Equal(t, "e", outcomes[4].Result.MeetingID)
}

func TestPrintOutcomes(t *testing.T) {
	var buf bytes.Buffer
	err := printOutcomes(&buf, []batchOutcome{
		{Source: "a.txt", Result: &reportuc.Result{MeetingID: "a", Location: "reports/a.json"}},
		{Source: "b.txt", Err: errors.New("analysis stage failed")},
	})
	assert.EqualError(t, err, "1 of 2 run(s) failed")
	assert.Contains(t, buf.String(), "OK   a.txt: reports/a.json (a)")
	assert.Contains(t, buf.String(), "FAIL b.txt: analysis stage failed")

	buf.Reset()
	assert.NoError(t, printOutcomes(&buf, []batchOutcome{
		{Source: "a.txt", Result: &reportuc.Result{MeetingID: "a", Location: "reports/a.json"}},
	}))
}

func TestMeetingIDForSource(t *testing.T) {
	tests := []struct {
		explicit string
		source   string
		total    int
		want     string
	}{
		{"weekly", "/tmp/standup.txt", 1, "weekly"},
		{"weekly", "/tmp/standup.txt", 2, "standup"},
		{"", "/tmp/Q3 planning (final).mp3", 1, "Q3-planning--final-"},
		{"", "/tmp/.hidden", 1, ""},
		{"", "recordings/2024-05-01_sync.wav", 3, "2024-05-01_sync"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, meetingIDForSource(tt.explicit, tt.source, tt.total), tt.source)
	}
}

func TestBatchMeetingIDs(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		sources  []string
		want     []string
	}{
		{"single explicit", "weekly", []string{"a/standup.wav"}, []string{"weekly"}},
		{"distinct stems", "", []string{"a/standup.wav", "b/retro.m4a"}, []string{"standup", "retro"}},
		{"same stem in different dirs", "", []string{"a/standup.wav", "b/standup.m4a"}, []string{"standup", "standup-2"}},
		{"suffix already taken", "", []string{"a/standup.wav", "standup-2.txt", "b/standup.mp3"}, []string{"standup", "standup-2", "standup-3"}},
		{"same file twice", "", []string{"notes.txt", "notes.txt"}, []string{"notes", "notes-2"}},
		{"invalid stems stay empty", "", []string{"a/.hidden", "b/.hidden"}, []string{"", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, batchMeetingIDs(tt.explicit, tt.sources))
		})
	}
}

func TestBatchMeetingIDs_LongStem(t *testing.T) {
	stem := strings.Repeat("x", maxMeetingIDLen+10)
	ids := batchMeetingIDs("", []string{"a/" + stem + ".txt", "b/" + stem + ".txt"})

	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	for _, id := range ids {
		assert.NoError(t, reportuc.ValidateMeetingID(id))
	}
	assert.True(t, strings.HasSuffix(ids[1], "-2"))
}
