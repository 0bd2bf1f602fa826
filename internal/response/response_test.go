package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Invalid request. Please check your input.", UserMessage(400, ""))
	assert.Equal(t, "Please log in to continue.", UserMessage(401, ""))
	assert.Equal(t, "The requested resource was not found.", UserMessage(404, "x"))
	assert.Equal(t, "Server error. Please try again later.", UserMessage(500, ""))
	assert.Equal(t, "slow down", UserMessage(429, "slow down"))
	assert.Equal(t, "An error occurred. Please try again.", UserMessage(418, ""))
}

func TestEnvelopes(t *testing.T) {
	r := BadRequest("nope")
	assert.Nil(t, r.Data)
	assert.Equal(t, 400, r.Error.Code)
	assert.Equal(t, "nope", r.Error.Message)

	r = Success([]int{1}, map[string]any{"n": 1})
	assert.Nil(t, r.Error)
	assert.Equal(t, 1, r.Meta["n"])
}
