package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncement(t *testing.T) {
	text, err := announcement([]string{"New", "patterns", "added"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "New patterns added", text)

	text, err = announcement(nil, strings.NewReader("  from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)

	_, err = announcement(nil, strings.NewReader(" \n"))
	assert.Error(t, err)
}
