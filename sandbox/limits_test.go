package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitsPrelude(t *testing.T) {
	var testCases = []struct {
		description string
		limits      Limits
		expect      string
	}{
		{
			description: "both ceilings",
			limits:      Limits{MemoryBytes: 512 << 20, CPUSeconds: 600},
			expect:      "ulimit -v 524288 2>/dev/null; ulimit -t 600 2>/dev/null; ulimit -c 0 2>/dev/null",
		},
		{
			description: "memory only",
			limits:      Limits{MemoryBytes: 1 << 20},
			expect:      "ulimit -v 1024 2>/dev/null; ulimit -c 0 2>/dev/null",
		},
		{
			description: "no ceilings still suppresses core dumps",
			limits:      Limits{},
			expect:      "ulimit -c 0 2>/dev/null",
		},
	}

	for _, testCase := range testCases {
		assert.EqualValues(t, testCase.expect, testCase.limits.Prelude(), testCase.description)
	}
}
