package provider_test

import (
	"strings"
	"testing"

	"github.com/robfig/ssview/data"
	"github.com/robfig/ssview/provider"
	"github.com/robfig/ssview/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiterals(t *testing.T) {
	var literals, err = provider.ParseLiterals(strings.NewReader(`
// site settings
SiteTitle = 'My <Site>'
Copyright = "2024"
MaxItems = 10
Ratio = 1.5
Enabled = true
Nothing = null
`))
	require.NoError(t, err)
	assert.Equal(t, provider.Literals{
		"SiteTitle": "My <Site>",
		"Copyright": "2024",
		"MaxItems":  int64(10),
		"Ratio":     1.5,
		"Enabled":   true,
		"Nothing":   nil,
	}, literals)

	var s = view.NewScope(view.NewRegistry(literals), data.Map{}, nil, nil, nil)
	for name, expected := range map[string]string{
		"SiteTitle": "My &lt;Site&gt;",
		"siteTitle": "My &lt;Site&gt;",
		"MaxItems":  "10",
		"Enabled":   "1",
		"Nothing":   "",
	} {
		var v, err = s.Locally().XMLVal(name)
		require.NoError(t, err)
		assert.Equal(t, expected, v, name)
	}
}

func TestParseLiteralsErrors(t *testing.T) {
	for _, input := range []string{
		"NoEquals",
		"= 1",
		"Name = $Variable",
		"Name = 'unterminated",
	} {
		_, err := provider.ParseLiterals(strings.NewReader(input))
		assert.Error(t, err, input)
	}
}
