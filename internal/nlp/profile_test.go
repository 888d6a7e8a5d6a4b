package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterests(t *testing.T) {
	assert.Equal(t, []string{"toys", "gifts"}, Interests("a toy as a gift"))
	assert.Equal(t, []string{"books"}, Interests("any educational books?"))
	assert.Nil(t, Interests("where is my order"))
}

func TestTopics(t *testing.T) {
	assert.Equal(t, []string{"order_management", "shipping"}, Topics("track my order delivery"))
	assert.Equal(t, []string{"support"}, Topics("I have a question"))
	assert.Nil(t, Topics("你好"))
}
