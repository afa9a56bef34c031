package session

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatfront/internal/events"
)

// sharedFile opens two stores on one database file, the way two chat
// processes would, and watches the file on behalf of the first.
type sharedFile struct {
	local, other    *Opened
	localN, foreign atomic.Int32
}

func newSharedFile(t *testing.T) *sharedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chats.db")
	bus := events.NewBus(nil)

	local, err := Open(path, bus, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })
	other, err := Open(path, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })

	sf := &sharedFile{local: local, other: other}
	bus.Subscribe(func(c events.Change) {
		if c.Origin == events.OriginForeign {
			sf.foreign.Add(1)
		} else {
			sf.localN.Add(1)
		}
	})

	fw, err := events.NewFileWatcher(bus, path, local.DataVersion, events.DefaultWatcherConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, fw.Start())
	t.Cleanup(func() { _ = fw.Close() })
	return sf
}

func TestDataVersion_MovesOnlyForOtherConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.db")
	a, err := Open(path, nil, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(path, nil, nil)
	require.NoError(t, err)
	defer b.Close()
	ctx := context.Background()

	before, err := a.DataVersion(ctx)
	require.NoError(t, err)

	_, err = a.Store.Save(ctx, "mine", conversation("Hi"))
	require.NoError(t, err)
	afterOwn, err := a.DataVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, afterOwn)

	_, err = b.Store.Save(ctx, "theirs", conversation("Hello"))
	require.NoError(t, err)
	afterOther, err := a.DataVersion(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, afterOwn, afterOther)
}

func TestDataVersion_UnavailableStore(t *testing.T) {
	opened, err := Open("", nil, nil)
	require.NoError(t, err)
	_, err = opened.DataVersion(context.Background())
	assert.Error(t, err)
}

func TestFileWatcher_OwnWriteIsNotForeign(t *testing.T) {
	sf := newSharedFile(t)

	_, err := sf.local.Store.Save(context.Background(), "mine", conversation("Hi"))
	require.NoError(t, err)

	assert.EqualValues(t, 1, sf.localN.Load())
	assert.Never(t, func() bool { return sf.foreign.Load() > 0 }, 600*time.Millisecond, 20*time.Millisecond)
}

func TestFileWatcher_ForeignWriteRightAfterOwnWrite(t *testing.T) {
	sf := newSharedFile(t)
	ctx := context.Background()

	_, err := sf.local.Store.Save(ctx, "mine", conversation("Hi"))
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)
	_, err = sf.other.Store.Save(ctx, "theirs", conversation("Hello"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return sf.foreign.Load() == 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Never(t, func() bool { return sf.foreign.Load() > 1 }, 500*time.Millisecond, 20*time.Millisecond)
	assert.EqualValues(t, 1, sf.localN.Load())

	sessions, err := sf.local.Store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
