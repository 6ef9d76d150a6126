package scripts_test

import (
	"testing"

	"overlay/pkg/scripts"

	"github.com/stretchr/testify/require"
)

func TestFilterRewrite(t *testing.T) {
	assert := require.New(t)

	hook, err := scripts.New(`
		function filter(name, text)
		    return name .. ": " .. text, false
		end
	`)
	assert.NoError(err)
	defer hook.Close()

	text, drop, err := hook.Filter("viewer", "hello")
	assert.NoError(err)
	assert.False(drop)
	assert.Equal("viewer: hello", text)
}

func TestFilterDrop(t *testing.T) {
	assert := require.New(t)

	hook, err := scripts.New(`
		function filter(name, text)
		    if text == "spam" then
		        return "", true
		    end
		    return text, false
		end
	`)
	assert.NoError(err)
	defer hook.Close()

	_, drop, err := hook.Filter("viewer", "spam")
	assert.NoError(err)
	assert.True(drop)

	text, drop, err := hook.Filter("viewer", "fine")
	assert.NoError(err)
	assert.False(drop)
	assert.Equal("fine", text)
}

func TestBrokenScriptRejected(t *testing.T) {
	assert := require.New(t)

	_, err := scripts.New(`this is not lua`)
	assert.Error(err)

	_, err = scripts.New(`x = 1`)
	assert.ErrorContains(err, "filter function")
}
