package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "tranchor/pkg/domain"
	audit "tranchor/pkg/platform/audit"
	"tranchor/pkg/platform/audit/store/memory"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	if f.err != nil {
		return kgo.ProduceResults{{Err: f.err}}
	}
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r})
	}
	return results
}

func (f *fakeProducer) Close() { f.closed = true }

func TestSink_Append(t *testing.T) {
	t.Run("publishes event keyed by participant", func(t *testing.T) {
		producer := &fakeProducer{}
		sink := NewWithProducer(producer, "tranchor.audit", nil)

		event := audit.Event{
			Participant: id.ParticipantID("alice"),
			Action:      audit.EventRedemptionExecuted,
			Amount:      42,
		}
		require.NoError(t, sink.Append(context.Background(), event))

		require.Len(t, producer.records, 1)
		assert.Equal(t, "tranchor.audit", producer.records[0].Topic)
		assert.Equal(t, []byte("alice"), producer.records[0].Key)

		var decoded audit.Event
		require.NoError(t, json.Unmarshal(producer.records[0].Value, &decoded))
		assert.Equal(t, event.Action, decoded.Action)
		assert.Equal(t, uint64(42), decoded.Amount)
	})

	t.Run("surfaces produce errors", func(t *testing.T) {
		producer := &fakeProducer{err: errors.New("broker unreachable")}
		sink := NewWithProducer(producer, "tranchor.audit", nil)

		err := sink.Append(context.Background(), audit.Event{Action: "x"})
		require.Error(t, err)
	})
}

func TestTee(t *testing.T) {
	primary := memory.NewInMemoryStore()
	producer := &fakeProducer{}
	tee := &Tee{Primary: primary, Secondary: NewWithProducer(producer, "tranchor.audit", nil)}

	participant := id.ParticipantID("bob")
	require.NoError(t, tee.Append(context.Background(), audit.Event{
		Participant: participant,
		Action:      audit.EventCertificateIssued,
	}))

	events, err := tee.ListByParticipant(context.Background(), participant)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Len(t, producer.records, 1, "secondary sink should also receive the event")
}
