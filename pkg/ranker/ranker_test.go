package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newspost/pkg/domain"
)

func TestSearch_Scoring(t *testing.T) {
	corpus := []domain.Article{
		{ID: "title-hit", Title: "quantum computing advances", Content: "some body"},
		{ID: "content-hit", Title: "tech news", Content: "quantum quantum quantum"},
		{ID: "summary-hit", Title: "science digest", Summary: "a quantum leap"},
		{ID: "no-hit", Title: "sports roundup", Content: "football"},
	}

	res := Search("quantum", corpus, 0)
	require.Len(t, res, 3, "zero-score articles excluded")

	// title match scores 10, summary 5, content 1 per occurrence
	assert.Equal(t, "title-hit", res[0].ID)
	assert.Equal(t, "summary-hit", res[1].ID)
	assert.Equal(t, "content-hit", res[2].ID)
}

func TestSearch_MultiTermAndLimit(t *testing.T) {
	corpus := []domain.Article{
		{ID: "both", Title: "climate policy debate", Content: "climate and policy"},
		{ID: "one", Title: "climate report", Content: "warming"},
		{ID: "other", Title: "policy update", Content: "regulation"},
	}

	res := Search("climate policy", corpus, 2)
	require.Len(t, res, 2)
	assert.Equal(t, "both", res[0].ID, "article matching both terms ranks first")
}

func TestSearch_TiesKeepCorpusOrder(t *testing.T) {
	corpus := []domain.Article{
		{ID: "first", Title: "election night"},
		{ID: "second", Title: "election day"},
	}

	res := Search("election", corpus, 0)
	require.Len(t, res, 2)
	assert.Equal(t, "first", res[0].ID)
	assert.Equal(t, "second", res[1].ID)
}

func TestSearch_EmptyQuery(t *testing.T) {
	corpus := []domain.Article{{ID: "a", Title: "anything"}}
	assert.Nil(t, Search("", corpus, 10))
	assert.Nil(t, Search("   ", corpus, 10))
}

func TestTrending_Basic(t *testing.T) {
	corpus := []domain.Article{
		{ID: "1", Title: "artificial intelligence breakthrough", Content: "artificial intelligence models improve"},
		{ID: "2", Title: "more artificial intelligence news", Content: "labs race on artificial intelligence"},
		{ID: "3", Title: "quiet sports day", Content: "nothing happened"},
	}

	topics := Trending(corpus, 3)
	require.Len(t, topics, 3)

	// equal counts resolve alphabetically: artificial, then the bigram
	assert.Equal(t, "artificial", topics[0].Topic)
	assert.Equal(t, 4, topics[0].Frequency)
	assert.Equal(t, "artificial intelligence", topics[1].Topic, "phrases compete with single words")
	assert.Equal(t, 4, topics[1].Frequency)
	require.NotEmpty(t, topics[0].RelatedArticles)
	assert.LessOrEqual(t, len(topics[0].RelatedArticles), 3)

	// frequencies never increase down the list
	for i := 1; i < len(topics); i++ {
		assert.GreaterOrEqual(t, topics[i-1].Frequency, topics[i].Frequency)
	}
}

func TestTrending_SoftCap(t *testing.T) {
	corpus := []domain.Article{
		{ID: "1", Title: "economy inflation markets banking currency trading stocks bonds",
			Content: "economy inflation markets banking currency trading stocks bonds economy inflation"},
	}

	topics := Trending(corpus, 5)
	assert.LessOrEqual(t, len(topics), 5, "count is a soft maximum")
	for _, topic := range topics {
		assert.NotEmpty(t, topic.RelatedArticles, "every topic has supporting articles")
	}
}

func TestTrending_StopWordsExcluded(t *testing.T) {
	corpus := []domain.Article{
		{ID: "1", Title: "this this this this", Content: "about about about government policy government policy"},
		{ID: "2", Content: "government policy announcement"},
	}

	topics := Trending(corpus, 10)
	for _, topic := range topics {
		assert.False(t, containsStopWord(topic.Topic), "topic %q contains a stop word", topic.Topic)
	}
}

func TestTrending_WordLengthInRunes(t *testing.T) {
	// "ééé" is 6 bytes but only 3 characters, too short to be a topic;
	// "café" is 4 characters and qualifies
	corpus := []domain.Article{
		{ID: "1", Title: "café économie résumé", Content: "café économie café économie"},
		{ID: "2", Title: "ééé ééé ééé", Content: "ééé ééé ééé ééé ééé ééé"},
	}

	topics := Trending(corpus, 5)
	require.NotEmpty(t, topics)

	seen := map[string]bool{}
	for _, topic := range topics {
		seen[topic.Topic] = true
	}
	assert.False(t, seen["ééé"], "short words are measured in characters, not bytes")
	assert.True(t, seen["café"], "accented words survive punctuation stripping")
}

func TestTrending_Deterministic(t *testing.T) {
	corpus := []domain.Article{
		{ID: "1", Title: "alpha beta gamma delta", Content: "alpha beta gamma delta"},
		{ID: "2", Title: "delta gamma beta alpha", Content: "delta gamma beta alpha"},
	}

	first := Trending(corpus, 5)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Trending(corpus, 5), "equal-count terms keep a stable order")
	}
}

func TestTrending_Empty(t *testing.T) {
	assert.Nil(t, Trending(nil, 5))
	assert.Nil(t, Trending([]domain.Article{{Title: "x"}}, 0))
}

func TestContainsStopWord(t *testing.T) {
	assert.True(t, containsStopWord("the economy"))
	assert.True(t, containsStopWord("said"))
	assert.False(t, containsStopWord("economy markets"))
}
