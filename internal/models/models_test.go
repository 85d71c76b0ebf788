package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskDescriptionAbsentEncodesNull(t *testing.T) {
	data, err := json.Marshal(Task{ID: 1, Title: "A"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"A","description":null,"completed":false}`, string(data))
}

func TestTaskUnmarshalDescription(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		present bool
		text    string
	}{
		{"missing", `{"id":1,"title":"A"}`, false, ""},
		{"null", `{"id":1,"title":"A","description":null}`, false, ""},
		{"empty", `{"id":1,"title":"A","description":""}`, false, ""},
		{"literal null string is a real value", `{"id":1,"title":"A","description":"null"}`, true, "null"},
		{"set", `{"id":1,"title":"A","description":"milk"}`, true, "milk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task Task
			require.NoError(t, json.Unmarshal([]byte(tt.input), &task))
			assert.Equal(t, tt.present, task.HasDescription())
			assert.Equal(t, tt.text, task.DescriptionText())
		})
	}
}

func TestTaskCopyHelpersDoNotMutate(t *testing.T) {
	orig := Task{ID: 3, Title: "old"}

	edited := orig.WithTitle("new").WithDescription("notes").WithCompleted(true)

	assert.Equal(t, "old", orig.Title)
	assert.False(t, orig.HasDescription())
	assert.False(t, orig.Completed)
	assert.Equal(t, "new", edited.Title)
	assert.Equal(t, "notes", edited.DescriptionText())
	assert.True(t, edited.Completed)
}

func TestDescribeBlankIsAbsent(t *testing.T) {
	assert.Nil(t, Describe(""))
	assert.Nil(t, Describe("   "))
	require.NotNil(t, Describe("x"))
	assert.Equal(t, "x", *Describe("x"))
}

func TestActive(t *testing.T) {
	in := []Task{{ID: 1}, {ID: 2, Completed: true}, {ID: 3}}
	out := Active(in)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)
}
