package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinting(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetNoColor(true)
	defer func() {
		SetQuietMode(false)
		SetNoColor(false)
	}()

	PrintInfo("User ID", "42")
	PrintError("Request failed", "boom")
	PrintWarning("Token expires soon")
	assert.Equal(t, "User ID: 42\nRequest failed: boom\nToken expires soon\n", buf.String())

	buf.Reset()
	SetQuietMode(true)
	PrintSuccess("done")
	PrintHighlight("hi")
	PrintError("still shown")
	assert.Equal(t, "still shown\n", buf.String())
}
