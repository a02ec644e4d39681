package repositories

import (
	"testing"
	"time"

	"mingle/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func testPost(id string, createdAt time.Time, ttl time.Duration, topics ...models.Topic) *models.Post {
	if len(topics) == 0 {
		topics = []models.Topic{models.TopicTech}
	}
	return &models.Post{
		ID:           id,
		Title:        "Title " + id,
		Body:         "Body of " + id,
		Topics:       topics,
		CreatedAt:    createdAt,
		ExpiresAt:    createdAt.Add(ttl),
		Status:       models.StatusLive,
		OwnerID:      "owner-1",
		OwnerName:    "Olga",
		Interactions: []models.Interaction{},
	}
}

func ids(posts []*models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestPostFilterMatch(t *testing.T) {
	post := testPost("a", testNow, 10*time.Minute, models.TopicHealth, models.TopicSport)

	tests := []struct {
		name   string
		filter PostFilter
		want   bool
	}{
		{name: "zero filter", filter: PostFilter{}, want: true},
		{name: "matching topic", filter: PostFilter{Topic: models.TopicSport}, want: true},
		{name: "other topic", filter: PostFilter{Topic: models.TopicTech}, want: false},
		{name: "expired by expiry instant", filter: PostFilter{ExpiredBy: testNow.Add(10 * time.Minute)}, want: true},
		{name: "not yet expired", filter: PostFilter{ExpiredBy: testNow.Add(9 * time.Minute)}, want: false},
		{
			name:   "topic and expiry",
			filter: PostFilter{Topic: models.TopicHealth, ExpiredBy: testNow.Add(time.Hour)},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(post))
		})
	}
}

func TestSortPosts(t *testing.T) {
	build := func() []*models.Post {
		return []*models.Post{
			testPost("b", testNow, 30*time.Minute),
			testPost("c", testNow.Add(time.Minute), 5*time.Minute),
			testPost("a", testNow, 30*time.Minute),
			testPost("d", testNow.Add(-time.Minute), time.Hour),
		}
	}

	tests := []struct {
		name  string
		order PostOrder
		want  []string
	}{
		{name: "newest first", order: OrderNewest, want: []string{"c", "b", "a", "d"}},
		{name: "oldest first", order: OrderOldest, want: []string{"d", "a", "b", "c"}},
		{name: "recently expired first", order: OrderRecentlyExpired, want: []string{"d", "a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := build()
			SortPosts(posts, tt.order)
			assert.Equal(t, tt.want, ids(posts))
		})
	}
}

func TestMarshalEntity(t *testing.T) {
	post := testPost("a", testNow, time.Minute)
	post.Append(models.Interaction{
		UserID:    "u1",
		Username:  "Nick",
		Action:    models.Comment{Text: "hello"},
		TimeLeft:  30 * time.Second,
		CreatedAt: testNow.Add(30 * time.Second),
	})

	data, err := marshalEntity(post)
	require.NoError(t, err)

	var decoded models.Post
	require.NoError(t, unmarshalEntity(data, &decoded))
	require.Len(t, decoded.Interactions, 1)
	text, ok := decoded.Interactions[0].CommentText()
	assert.True(t, ok)
	assert.Equal(t, "hello", text)
	assert.Equal(t, 30*time.Second, decoded.Interactions[0].TimeLeft)

	t.Run("invalid json", func(t *testing.T) {
		err := unmarshalEntity([]byte("{"), &decoded)
		assert.Error(t, err)
	})

	t.Run("interaction without action", func(t *testing.T) {
		bad := testPost("b", testNow, time.Minute)
		bad.Interactions = []models.Interaction{{UserID: "u1"}}
		_, err := marshalEntity(bad)
		assert.Error(t, err)
	})
}
