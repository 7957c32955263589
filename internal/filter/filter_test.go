package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkerFilter_Allow(t *testing.T) {
	tests := []struct {
		name    string
		markers []string
		text    string
		want    bool
	}{
		{
			name:    "plain group passes",
			markers: []string{"Email:"},
			text:    "Desenvolvedor Backend Acme Ltda Recife",
			want:    true,
		},
		{
			name:    "marker anywhere rejects the group",
			markers: []string{"Email:"},
			text:    "Contato\n  Email: rh@acme.com",
			want:    false,
		},
		{
			name:    "matching is case sensitive",
			markers: []string{"Email:"},
			text:    "email: rh@acme.com",
			want:    true,
		},
		{
			name:    "any of several markers rejects",
			markers: []string{"Email:", "Telefone:"},
			text:    "Telefone: 81 9999-0000",
			want:    false,
		},
		{
			name:    "blank markers are ignored",
			markers: []string{"", "  "},
			text:    "anything",
			want:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewMarkerFilter(tt.markers)
			assert.Equal(t, tt.want, f.Allow(tt.text))
		})
	}
}

func TestMarkerFilter_NilAllowsAll(t *testing.T) {
	var f *MarkerFilter
	assert.True(t, f.Allow("Email: x"))
}
