package main

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsHaveNamesAndRunners(t *testing.T) {
	for name, cmd := range commands() {
		assert.Equal(t, name, cmd.name)
		assert.NotEmpty(t, cmd.description)
		require.NotNil(t, cmd.run)
	}
}

func TestCommandTableCoversExpectedCommands(t *testing.T) {
	var names []string
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)

	assert.Equal(t, []string{
		"db-reset",
		"db-seed",
		"list-counterparties",
		"list-outbox",
		"list-pricing-rules",
		"migrate",
	}, names)
}
