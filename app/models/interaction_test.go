package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionJSON(t *testing.T) {
	created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	t.Run("like omits comment text", func(t *testing.T) {
		i := Interaction{
			UserID:    "u1",
			Username:  "Nick",
			Action:    Like{},
			TimeLeft:  90 * time.Second,
			CreatedAt: created,
		}

		data, err := json.Marshal(i)
		require.NoError(t, err)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, "like", raw["type"])
		assert.Equal(t, "u1", raw["userId"])
		assert.Equal(t, "Nick", raw["username"])
		assert.Equal(t, float64(90000), raw["timeLeftBeforeExpirationMs"])
		assert.Equal(t, "2026-10-19T12:00:00Z", raw["createdAt"])
		assert.NotContains(t, raw, "commentText")
	})

	t.Run("comment carries its text", func(t *testing.T) {
		i := Interaction{UserID: "u2", Username: "Mary", Action: Comment{Text: "nice"}, CreatedAt: created}

		data, err := json.Marshal(i)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"commentText":"nice"`)

		var decoded Interaction
		require.NoError(t, json.Unmarshal(data, &decoded))
		text, ok := decoded.CommentText()
		assert.True(t, ok)
		assert.Equal(t, "nice", text)
		assert.Equal(t, KindComment, decoded.Kind())
	})

	t.Run("missing action cannot be encoded", func(t *testing.T) {
		_, err := json.Marshal(Interaction{UserID: "u3"})
		assert.Error(t, err)
	})
}

func TestInteractionDecodeRejectsInconsistentRecords(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "like with text", data: `{"userId":"u","type":"like","commentText":"x"}`},
		{name: "comment without text", data: `{"userId":"u","type":"comment"}`},
		{name: "comment with empty text", data: `{"userId":"u","type":"comment","commentText":""}`},
		{name: "unknown type", data: `{"userId":"u","type":"share"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var i Interaction
			assert.Error(t, json.Unmarshal([]byte(tt.data), &i))
		})
	}
}

func TestInteractionKinds(t *testing.T) {
	assert.Equal(t, KindLike, Interaction{Action: Like{}}.Kind())
	assert.Equal(t, KindDislike, Interaction{Action: Dislike{}}.Kind())
	assert.Equal(t, InteractionKind(""), Interaction{}.Kind())

	_, ok := Interaction{Action: Dislike{}}.CommentText()
	assert.False(t, ok)
}
