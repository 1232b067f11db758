package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("# Billing\n\nInvoices ship **monthly**.")
	require.NoError(t, err)

	assert.Contains(t, html, "<h1 id=\"billing\">Billing</h1>")
	assert.Contains(t, html, "<strong>monthly</strong>")
}

func TestRenderHTMLTables(t *testing.T) {
	html, err := RenderHTML("| Plan | Price |\n| --- | --- |\n| Basic | $10 |")
	require.NoError(t, err)

	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>Basic</td>")
}
