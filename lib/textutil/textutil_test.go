package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{input: "Obst & Gemüse", expect: "obst&gemüse"},
		{input: "  OBST &\n\tGemüse ", expect: "obst&gemüse"},
		{input: "Obst & Gemüse", expect: "obst&gemüse"},
		{input: "", expect: ""},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, NormalizeName(test.input))
	}
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "Gültig vom 17.04. bis 23.04.", CollapseWhitespace("\n  Gültig vom 17.04.   bis 23.04.\t"))
	require.Equal(t, "", CollapseWhitespace(" \n "))
}
