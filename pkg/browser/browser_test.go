package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingConn struct {
	closed int
	err    error
}

func (c *countingConn) Close() error {
	c.closed++
	return c.err
}

func TestCloseReleasesRemoteConnection(t *testing.T) {
	conn := &countingConn{}
	b := &Browser{conn: conn}

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Equal(t, 1, conn.closed)
}

func TestCloseReportsRemoteConnectionError(t *testing.T) {
	b := &Browser{conn: &countingConn{err: errors.New("broken pipe")}}

	err := b.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}
