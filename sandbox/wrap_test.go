package sandbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapCode(t *testing.T) {
	var testCases = []struct {
		description string
		code        string
		contains    []string
	}{
		{
			description: "payload nested under try block",
			code:        "print('hello')\nprint('world')",
			contains: []string{
				"try:\n    print('hello')\n    print('world')\nexcept",
				"start_time = time.time()",
				"sys.exit(1)",
			},
		},
		{
			description: "harness always reports elapsed time",
			code:        "x = 1",
			contains: []string{
				"finally:",
				"Execution time:",
			},
		},
	}

	for _, testCase := range testCases {
		wrapped := wrapCode(testCase.code)
		for _, fragment := range testCase.contains {
			assert.True(t, strings.Contains(wrapped, fragment), testCase.description)
		}
	}
}

func TestIndentCode(t *testing.T) {
	assert.EqualValues(t, "    a\n    b", indentCode("a\nb", 1))
	assert.EqualValues(t, "        a", indentCode("a", 2))
}
