package zenith

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_UnmarshalStates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		state FieldState
		value string
	}{
		{"absent", `{"ID":"A1"}`, FieldAbsent, ""},
		{"null", `{"ID":"A1","Name":null}`, FieldNull, ""},
		{"value", `{"ID":"A1","Name":"Test"}`, FieldPresent, "Test"},
		{"empty string is a value", `{"ID":"A1","Name":""}`, FieldPresent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s AccountState
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.Equal(t, tt.state, s.Name.State)
			assert.Equal(t, tt.value, s.Name.Value)
		})
	}
}

func TestField_UnmarshalWrongType(t *testing.T) {
	var s AccountState
	err := json.Unmarshal([]byte(`{"ID":"A1","Name":12}`), &s)
	assert.Error(t, err)
}

func TestField_MarshalOmitsAbsent(t *testing.T) {
	s := AccountState{ID: "A1", Name: Present("Test"), Currency: Null[string]()}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ID":"A1","Name":"Test","Currency":null}`, string(data))
}

func TestTopic_MakeAndSplit(t *testing.T) {
	topic := MakeTopic(TopicHoldings, "A1[Demo]")
	assert.Equal(t, "Holdings!A1[Demo]", topic)

	name, arg := SplitTopic(topic)
	assert.Equal(t, TopicHoldings, name)
	assert.Equal(t, "A1[Demo]", arg)

	assert.Equal(t, TopicAccounts, MakeTopic(TopicAccounts, ""))
	name, arg = SplitTopic(TopicAccounts)
	assert.Equal(t, TopicAccounts, name)
	assert.Empty(t, arg)
}

func TestMessage_HasData(t *testing.T) {
	assert.False(t, Message{}.HasData())
	assert.False(t, Message{Data: json.RawMessage("null")}.HasData())
	assert.True(t, Message{Data: json.RawMessage("[]")}.HasData())
}
