package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPkgAlias(t *testing.T) {
	assert.Equal(t, "store", PkgAlias("github.com/acme/store"))
	assert.Equal(t, "time", PkgAlias("time"))
	assert.Empty(t, PkgAlias(""))
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		name      string
		qualifier string
		short     string
		ok        bool
	}{
		{"shop.models.Item", "shop.models", "Item", true},
		{"github.com/acme/inv.Item", "github.com/acme/inv", "Item", true},
		{"Item", "", "Item", false},
		{".Item", "", ".Item", false},
		{"shop.", "", "shop.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, s, ok := SplitQualified(tt.name)
			assert.Equal(t, tt.qualifier, q)
			assert.Equal(t, tt.short, s)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
