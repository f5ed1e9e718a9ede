package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderLayoutEscapes(t *testing.T) {
	out := renderLayout("Leave <approved>", "Dates: 3 & 4 March", "https://hr.example.com/leaves/1?a=1&b=2", "Open")

	assert.Contains(t, out, "Leave &lt;approved&gt;")
	assert.Contains(t, out, "3 &amp; 4 March")
	assert.Contains(t, out, `href="https://hr.example.com/leaves/1?a=1&amp;b=2"`)
}

func TestRenderLayoutWithoutLink(t *testing.T) {
	out := renderLayout("Reminder", "Please check out.", "", "Open")
	assert.NotContains(t, out, "<a href")
}
