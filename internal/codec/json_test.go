package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTripThroughStreams(t *testing.T) {
	var buf bytes.Buffer
	c := JSON{}

	require.NoError(t, c.NewEncoder(&buf).Encode(map[string]any{"leadIds": []int{5, 9}}))

	var got struct {
		LeadIDs []int64 `json:"leadIds"`
	}
	require.NoError(t, c.NewDecoder(&buf).Decode(&got))
	assert.Equal(t, []int64{5, 9}, got.LeadIDs)
}

func TestJSONUnmarshalRejectsGarbage(t *testing.T) {
	var v map[string]any
	err := JSON{}.Unmarshal([]byte("<html>"), &v)
	assert.Error(t, err)
}
