package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Text(t *testing.T) {
	assert.Equal(t, "", Document{}.Text())
	assert.Equal(t, "flat", FromText("flat").Text())
	assert.Equal(t, "eins\nzwei", FromPages([]Page{{Number: 1, FullText: "eins"}, {Number: 2, FullText: "zwei"}}).Text())
	assert.Equal(t, "result", FromResult(Result{Text: "result"}).Text())
}

func TestDocument_Empty(t *testing.T) {
	assert.True(t, Document{}.Empty())
	assert.True(t, FromPages([]Page{{Number: 1, FullText: "  "}}).Empty())
	assert.False(t, FromText("x").Empty())
}
