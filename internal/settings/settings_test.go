package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_EnterpriseEnabled(t *testing.T) {
	assert.False(t, Settings{}.EnterpriseEnabled())
	assert.True(t, Settings{EnterpriseEdition: "licensed"}.EnterpriseEnabled())
}

func TestSettings_IsUserListening(t *testing.T) {
	s := Settings{ActivityListenersUsers: []string{"user-1", "user-2"}}
	assert.True(t, s.IsUserListening("user-1"))
	assert.False(t, s.IsUserListening("user-3"))
	assert.False(t, Settings{}.IsUserListening("user-1"))
}

func TestMemoryProvider_Update(t *testing.T) {
	p := NewMemoryProvider(Settings{})

	s, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, s.EnterpriseEnabled())

	p.Update(Settings{EnterpriseEdition: "licensed"})
	s, err = p.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, s.EnterpriseEnabled())
}
