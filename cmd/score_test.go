package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCategories(t *testing.T) {
	assert.Equal(t, []string{"cafe", "bakery"}, splitCategories("cafe,bakery"))
	assert.Equal(t, []string{"cafe", "bakery"}, splitCategories(" cafe , bakery "))
	assert.Equal(t, []string{"cafe"}, splitCategories("cafe,,"))
	assert.Nil(t, splitCategories(""))
}

func TestScoreSubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range scoreCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"demographics", "income", "competition", "complementary", "traffic", "profile"} {
		assert.True(t, names[want], want)
	}
}

func TestServeCommandRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())
}

func TestScoreTrafficFlags(t *testing.T) {
	for _, name := range []string{"direction", "day", "time", "lat", "lng"} {
		assert.NotNil(t, scoreTrafficCmd.Flags().Lookup(name), name)
	}
	// Traffic analysis has no radius; the service decides the viewport.
	assert.Nil(t, scoreTrafficCmd.Flags().Lookup("radius"))
}
