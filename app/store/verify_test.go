package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	valid := `[
		{"id":"1","title":"Engineer","department":"Eng","location":"BKK","type":"Full-time",
		 "description":"d","requirements":["Go"],"status":"OPEN","createdAt":1000,"updatedAt":2000},
		{"id":"2","title":"Designer","department":"Design","location":"Remote","type":"Contract",
		 "description":"d","requirements":[],"status":"ARCHIVED","createdAt":500,"updatedAt":500}
	]`

	tests := []struct {
		name    string
		payload string
		errMsg  string
	}{
		{name: "valid backup", payload: valid},
		{name: "empty collection", payload: `[]`},
		{name: "not an array", payload: `{"id":"1"}`, errMsg: "not a posting array"},
		{name: "garbage", payload: `nope`, errMsg: "not a posting array"},
		{
			name:    "missing id",
			payload: `[{"id":"","title":"x","department":"y","location":"z","type":"Intern","status":"OPEN","createdAt":1,"updatedAt":1}]`,
			errMsg:  "id is required",
		},
		{
			name: "duplicate ids",
			payload: `[{"id":"1","title":"a","department":"d","location":"l","type":"Intern","status":"OPEN","createdAt":1,"updatedAt":1},
			           {"id":"1","title":"b","department":"d","location":"l","type":"Intern","status":"OPEN","createdAt":1,"updatedAt":1}]`,
			errMsg: `duplicate id "1"`,
		},
		{
			name:    "missing title",
			payload: `[{"id":"1","title":"","department":"d","location":"l","type":"Intern","status":"OPEN","createdAt":1,"updatedAt":1}]`,
			errMsg:  "title is required",
		},
		{
			name:    "invalid status enum",
			payload: `[{"id":"1","title":"a","department":"d","location":"l","type":"Intern","status":"PENDING","createdAt":1,"updatedAt":1}]`,
			errMsg:  `invalid status "PENDING"`,
		},
		{
			name:    "invalid job type enum",
			payload: `[{"id":"1","title":"a","department":"d","location":"l","type":"Gig","status":"OPEN","createdAt":1,"updatedAt":1}]`,
			errMsg:  `invalid job type "Gig"`,
		},
		{
			name:    "updatedAt before createdAt",
			payload: `[{"id":"1","title":"a","department":"d","location":"l","type":"Intern","status":"OPEN","createdAt":100,"updatedAt":50}]`,
			errMsg:  "before createdAt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify([]byte(tt.payload))
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestVerifyAcceptsOwnExport(t *testing.T) {
	st := New(&countingSlot{})
	_, err := st.Create(testInput())
	require.NoError(t, err)

	data, _, err := st.Export()
	require.NoError(t, err)
	require.NoError(t, Verify(data))
}
