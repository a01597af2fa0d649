package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	assert.Error(t, err)
}

func TestGetTextDefault(t *testing.T) {
	var out bytes.Buffer
	got, err := GetTextDefault(rdr("\n"), "Title", "Picnic", &out)
	require.NoError(t, err)
	assert.Equal(t, "Picnic", got)
	assert.Contains(t, out.String(), "Title [Picnic]")

	got, err = GetTextDefault(rdr("Hike\n"), "Title", "Picnic", &out)
	require.NoError(t, err)
	assert.Equal(t, "Hike", got)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)
}

func TestGetPassword(t *testing.T) {
	oldRead, oldTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = oldRead, oldTerm })

	t.Run("terminal", func(t *testing.T) {
		isTerminal = func(int) bool { return true }
		readPassword = func(int) ([]byte, error) { return []byte("hunter2"), nil }

		var out bytes.Buffer
		got, err := GetPassword(rdr(""), "Password", &out)
		require.NoError(t, err)
		assert.Equal(t, "hunter2", got)
	})

	t.Run("terminal error", func(t *testing.T) {
		isTerminal = func(int) bool { return true }
		readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }

		var out bytes.Buffer
		_, err := GetPassword(rdr(""), "Password", &out)
		assert.Error(t, err)
	})

	t.Run("piped input", func(t *testing.T) {
		isTerminal = func(int) bool { return false }

		var out bytes.Buffer
		got, err := GetPassword(rdr("s3cret\n"), "Password", &out)
		require.NoError(t, err)
		assert.Equal(t, "s3cret", got)
	})
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, Confirm(rdr("y\n"), "Sure?", &out))
	assert.True(t, Confirm(rdr("YES\n"), "Sure?", &out))
	assert.False(t, Confirm(rdr("n\n"), "Sure?", &out))
	assert.False(t, Confirm(rdr(""), "Sure?", &out))
}
