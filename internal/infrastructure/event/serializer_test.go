package event

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GremaudMatthieu/Baillr-sub000/internal/domain/ownership"
)

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := newTestSerializer()
	original := createdEvent(testEntityID)

	data, err := s.Serialize(original)
	require.NoError(t, err)

	decoded, err := s.Deserialize(ownership.EventTypeEntityCreated, data)
	require.NoError(t, err)

	created, ok := decoded.(*ownership.EntityCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), created.EventID())
	assert.Equal(t, testEntityID, created.AggregateID())
	assert.Equal(t, ownership.AggregateTypeEntity, created.AggregateType())
	assert.Equal(t, "SCI Les Tilleuls", created.Name)
	assert.Equal(t, "12345678901234", created.Siret)
	assert.Equal(t, testAddress(), created.Address)
	assert.True(t, original.OccurredAt().Equal(created.OccurredAt()))
}

func TestEventSerializer_RoundTripsEveryEventType(t *testing.T) {
	s := newTestSerializer()
	events := everyEntityEvent(testEntityID)
	require.Len(t, events, len(s.RegisteredTypes()))

	for _, original := range events {
		t.Run(original.EventType(), func(t *testing.T) {
			data, err := s.Serialize(original)
			require.NoError(t, err)

			var raw map[string]any
			require.NoError(t, json.Unmarshal(data, &raw))
			assert.Equal(t, original.EventType(), raw["type"])

			decoded, err := s.Deserialize(original.EventType(), data)
			require.NoError(t, err)
			assert.Equal(t, original.EventType(), decoded.EventType())
			assert.Equal(t, original, decoded)

			again, err := s.Serialize(decoded)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestEventSerializer_KeepsPatchPresence(t *testing.T) {
	s := newTestSerializer()
	patch := ownership.NewEntityBankAccountUpdatedEvent(testEntityID, "acc-1")
	cleared := ""
	patch.BIC = &cleared

	data, err := s.Serialize(patch)
	require.NoError(t, err)
	decoded, err := s.Deserialize(ownership.EventTypeEntityBankAccountUpdated, data)
	require.NoError(t, err)

	updated := decoded.(*ownership.EntityBankAccountUpdatedEvent)
	require.NotNil(t, updated.BIC)
	assert.Empty(t, *updated.BIC)
	assert.Nil(t, updated.Label)
	assert.Nil(t, updated.IsDefault)
}

func TestEventSerializer_StampsSchemaVersion(t *testing.T) {
	s := newTestSerializer()

	data, err := s.Serialize(ownership.NewEntityLatePaymentDelayConfiguredEvent(testEntityID, 10))
	require.NoError(t, err)

	assert.Equal(t, 1, ExtractVersion(data))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, 1, raw["schema_version"])
}

func TestEventSerializer_UnknownType(t *testing.T) {
	s := newTestSerializer()

	_, err := s.Deserialize("SomethingElse", []byte(`{}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestEventSerializer_RegisteredTypes(t *testing.T) {
	s := newTestSerializer()

	types := s.RegisteredTypes()

	assert.Len(t, types, 10)
	assert.IsIncreasing(t, types)
	assert.True(t, s.IsRegistered(ownership.EventTypeEntityBankConnectionSynced))
	assert.False(t, s.IsRegistered("Unknown"))
}

func TestEventSerializer_UpgradesOldPayloads(t *testing.T) {
	s := NewEventSerializer(nil)
	// v1 stored the delay as "delay", v2 renamed it to "days".
	renameDelay := NewFieldUpgrader(1, func(data map[string]any) error {
		data["days"] = data["delay"]
		delete(data, "delay")
		return nil
	})
	require.NoError(t, s.RegisterVersioned(ownership.EventTypeEntityLatePaymentDelayConfigured,
		&ownership.EntityLatePaymentDelayConfiguredEvent{}, 2, renameDelay))

	legacy := []byte(`{"id":"7d8f8f7e-2f3c-4a7e-8d55-5a0e9b1c2d3e","type":"EntityLatePaymentDelayConfigured",` +
		`"timestamp":"2024-03-01T10:00:00Z","aggregate_id":"e-1","aggregate_type":"Entity",` +
		`"entity_id":"e-1","delay":15}`)

	decoded, err := s.Deserialize(ownership.EventTypeEntityLatePaymentDelayConfigured, legacy)
	require.NoError(t, err)

	configured := decoded.(*ownership.EntityLatePaymentDelayConfiguredEvent)
	assert.Equal(t, 15, configured.Days)
	assert.Equal(t, 2, configured.SchemaVersion)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), configured.OccurredAt())

	version, ok := s.CurrentVersion(ownership.EventTypeEntityLatePaymentDelayConfigured)
	assert.True(t, ok)
	assert.Equal(t, 2, version)
}

func TestEventSerializer_RegisterVersionedRequiresFullChain(t *testing.T) {
	s := NewEventSerializer(nil)

	err := s.RegisterVersioned(ownership.EventTypeEntityCreated, &ownership.EntityCreatedEvent{}, 3,
		NewFieldUpgrader(1, func(map[string]any) error { return nil }))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "v2 -> v3")
	assert.False(t, s.IsRegistered(ownership.EventTypeEntityCreated))
}

func TestEventSerializer_UpgradeFailure(t *testing.T) {
	s := NewEventSerializer(nil)
	boom := errors.New("boom")
	require.NoError(t, s.RegisterVersioned(ownership.EventTypeEntityCreated, &ownership.EntityCreatedEvent{}, 2,
		NewFieldUpgrader(1, func(map[string]any) error { return boom })))

	_, err := s.Deserialize(ownership.EventTypeEntityCreated, []byte(`{"entity_id":"e-1"}`))

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{name: "missing version", payload: `{"entity_id":"e-1"}`, want: 1},
		{name: "zero version", payload: `{"schema_version":0}`, want: 1},
		{name: "explicit version", payload: `{"schema_version":3}`, want: 3},
		{name: "invalid json", payload: `not json`, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVersion([]byte(tt.payload)))
		})
	}
}
