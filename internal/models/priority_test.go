package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePriority(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LOW", PriorityLow},
		{"low", PriorityLow},
		{" Medium ", PriorityMedium},
		{"HIGH", PriorityHigh},
		{"URGENT", PriorityUrgent},
		{"NONE", PriorityNone},
		{"", PriorityNone},
		{"critical", PriorityNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePriority(tc.in), "input %q", tc.in)
	}
}

func TestPriorityFromFreeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Urgent!!", PriorityUrgent},
		{"hi-pri", PriorityHigh},
		{"High", PriorityHigh},
		{"very high", PriorityHigh},
		{"Med", PriorityMedium},
		{"medium-ish", PriorityMedium},
		{"LOW ", PriorityLow},
		{"", PriorityNone},
		{"whenever", PriorityNone},
		{"chill", PriorityNone},
		{"this week", PriorityNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PriorityFromFreeText(tc.in), "input %q", tc.in)
	}
}
