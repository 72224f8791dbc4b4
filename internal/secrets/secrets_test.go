package secrets_test

import (
	"testing"

	"github.com/epluris/epluris/backend/internal/secrets"
	"github.com/stretchr/testify/require"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("EPLURIS_TEST_SECRET", "s3cret")

	v, err := secrets.Env{}.GetSecret("EPLURIS_TEST_SECRET")
	require.NoError(t, err)
	require.Equal(t, "s3cret", v)

	_, err = secrets.Env{}.GetSecret("EPLURIS_TEST_SECRET_MISSING")
	require.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestStaticProvider(t *testing.T) {
	p := secrets.Static{"KEY": "value"}

	v, err := p.GetSecret("KEY")
	require.NoError(t, err)
	require.Equal(t, "value", v)

	_, err = p.GetSecret("OTHER")
	require.ErrorIs(t, err, secrets.ErrNotFound)
}
