package helpers_test

import (
	"testing"

	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	testCases := []struct {
		Name  string
		Input any
	}{
		{
			Name:  "nil",
			Input: nil,
		},
		{
			Name:  "string",
			Input: "v",
		},
		{
			Name:  "slice",
			Input: []string{"v"},
		},
		{
			Name:  "nil_pointer",
			Input: (*string)(nil),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Input == nil {
				assert.Nil(t, helpers.Ptr(tc.Input))
			} else {
				assert.Equal(t, &tc.Input, helpers.Ptr(tc.Input))
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    string
		Length   int
		Expected string
	}{
		{Name: "short", Input: "format=json", Length: 32, Expected: "format=json"},
		{Name: "exact", Input: "format=json", Length: 11, Expected: "format=json"},
		{Name: "long", Input: "format=json&number=79990000000", Length: 14, Expected: "format=json..."},
		{Name: "tiny", Input: "format=json", Length: 2, Expected: "fo"},
		{Name: "negative", Input: "format=json", Length: -1, Expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, helpers.Truncate(tc.Input, tc.Length))
		})
	}
}
