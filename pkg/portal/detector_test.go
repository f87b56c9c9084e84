package portal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalDetector(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		password int
		want     bool
	}{
		{"portal page", "https://portal.example.fr/hp/etudiant", 0, false},
		{"login in url", "https://sso.example.fr/login?service=x", 0, true},
		{"cas gateway", "https://CAS.example.fr/auth", 0, true},
		{"password field only", "https://portal.example.fr/hp", 1, true},
	}

	d := NewSignalDetector([]string{"login", "cas"}, "input[type='password']")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage(tt.url)
			page.counts["input[type='password']"] = tt.password

			got, err := d.RequiresLogin(context.Background(), page)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignalDetectorWithoutPasswordSelector(t *testing.T) {
	d := NewSignalDetector(nil, "")
	got, err := d.RequiresLogin(context.Background(), newFakePage("https://portal.example.fr"))
	require.NoError(t, err)
	assert.False(t, got)
}
