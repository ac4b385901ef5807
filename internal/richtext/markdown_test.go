package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "blank",
			input:    "   \n",
			contains: nil,
		},
		{
			name:     "emphasis and list",
			input:    "**Fix** the login\n\n- one\n- two",
			contains: []string{"<strong>Fix</strong>", "<li>one</li>", "<li>two</li>"},
		},
		{
			name:     "strikethrough",
			input:    "~~done~~",
			contains: []string{"<del>done</del>"},
		},
		{
			name:     "script stripped",
			input:    "hello <script>alert(1)</script>",
			contains: []string{"hello"},
			excludes: []string{"<script>", "alert(1)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ToHTML(tt.input)
			require.NoError(t, err)

			if tt.contains == nil && tt.excludes == nil {
				assert.Empty(t, got)
				return
			}
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.False(t, strings.Contains(got, bad), "output %q should not contain %q", got, bad)
			}
		})
	}
}
