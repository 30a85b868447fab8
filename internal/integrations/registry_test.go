package integrations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-system/internal/integrations"
	"paper-system/internal/integrations/mock"
)

func TestRegistryActiveProvider(t *testing.T) {
	r := integrations.NewRegistry()

	_, err := r.GetActive()
	assert.ErrorIs(t, err, integrations.ErrNoActiveProvider)

	p := mock.NewMockProvider()
	require.NoError(t, r.Register(p))
	assert.Error(t, r.Register(p), "повторная регистрация")

	assert.ErrorIs(t, r.SetActive("unknown"), integrations.ErrProviderNotFound)
	require.NoError(t, r.SetActive(p.Name()))

	active, err := r.GetActive()
	require.NoError(t, err)
	assert.Equal(t, p.Name(), active.Name())

	_, err = r.Get("unknown")
	assert.ErrorIs(t, err, integrations.ErrProviderNotFound)
}
