package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			in:       "looks **fixed** now",
			contains: []string{"<strong>fixed</strong>"},
		},
		{
			name:     "gfm strikethrough",
			in:       "~~broken~~",
			contains: []string{"<del>broken</del>"},
		},
		{
			name:     "script is removed",
			in:       "hi <script>alert(1)</script>",
			excludes: []string{"<script", "alert(1)</script>"},
		},
		{
			name:     "javascript links are dropped",
			in:       "[click](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "links get nofollow",
			in:       "see https://example.com",
			contains: []string{`href="https://example.com"`, `rel="nofollow"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.ToHTML(tt.in)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
