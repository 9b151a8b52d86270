package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
)

func TestPromptConfirmer(t *testing.T) {
	prompt := service.DeletePrompt("Kia EV6")

	for _, tc := range []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	} {
		var out bytes.Buffer
		got := promptConfirmer{in: strings.NewReader(tc.input), out: &out}.Confirm(context.Background(), prompt)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		assert.Equal(t, `Are you sure you want to delete "Kia EV6"? [y/N]: `, out.String())
	}
}

func TestPrintCars(t *testing.T) {
	var out bytes.Buffer
	printCars(&out, domain.Filter(domain.SampleCars(), "tesla", domain.FuelAll))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Tesla Model S")
	assert.Contains(t, lines[1], "₹1,20,00,000")

	out.Reset()
	printCars(&out, nil)
	assert.Equal(t, "No cars found\n", out.String())
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "migrate", "search", "delete"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
