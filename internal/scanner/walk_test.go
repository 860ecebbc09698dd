package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"testing"

	"github.com/fenilsonani/cache-cleaner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, walk func(VisitFunc) error) ([]string, error) {
	t.Helper()

	var paths []string
	err := walk(func(path string, info fs.FileInfo) error {
		paths = append(paths, path)
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

// =============================================================================
// Direct Mode
// =============================================================================

func TestListDirect_ImmediateChildrenOnly(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("Logs/app.log", []byte("x"))
	f.CreateFile("Logs/DiagnosticReports/crash.ips", []byte("x"))
	f.CreateDir("Logs/empty")

	paths, err := collect(t, func(fn VisitFunc) error {
		return ListDirect(context.Background(), f.Path("Logs"), fn)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		f.Path("Logs/DiagnosticReports"),
		f.Path("Logs/app.log"),
		f.Path("Logs/empty"),
	}, paths)
}

func TestListDirect_MissingBase(t *testing.T) {
	f := testutil.NewFixture(t)

	paths, err := collect(t, func(fn VisitFunc) error {
		return ListDirect(context.Background(), f.Path("does/not/exist"), fn)
	})
	assert.NoError(t, err)
	assert.Empty(t, paths)
}

func TestListDirect_Cancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("cache/a", []byte("x"))
	f.CreateFile("cache/b", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := collect(t, func(fn VisitFunc) error {
		return ListDirect(ctx, f.Path("cache"), fn)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, paths)
}

func TestListDirect_CancelBetweenItems(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("cache/a", []byte("x"))
	f.CreateFile("cache/b", []byte("x"))
	f.CreateFile("cache/c", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen int
	err := ListDirect(ctx, f.Path("cache"), func(path string, info fs.FileInfo) error {
		seen++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, seen)
}

// =============================================================================
// Pattern Mode
// =============================================================================

func TestFindPattern_PrunesNestedMatches(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("root/node_modules/sub/node_modules/pkg/index.js", []byte("x"))

	paths, err := collect(t, func(fn VisitFunc) error {
		return FindPattern(context.Background(), f.Path("root"), "node_modules", fn)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{f.Path("root/node_modules")}, paths)
}

func TestFindPattern_FindsEveryProject(t *testing.T) {
	f := testutil.NewFixture(t)
	f.PopulateNodeModules("code/web")
	f.PopulateNodeModules("code/deep/nested/api")
	f.CreateFile("code/notes/node_modules", []byte("a file, not a directory"))

	paths, err := collect(t, func(fn VisitFunc) error {
		return FindPattern(context.Background(), f.RootDir, "node_modules", fn)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		f.Path("code/deep/nested/api/node_modules"),
		f.Path("code/web/node_modules"),
	}, paths)
}

func TestFindPattern_BaseItselfMatches(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("app/.next/cache/x", []byte("x"))

	paths, err := collect(t, func(fn VisitFunc) error {
		return FindPattern(context.Background(), f.Path("app/.next"), ".next", fn)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{f.Path("app/.next")}, paths)
}

func TestFindPattern_DoesNotFollowSymlinks(t *testing.T) {
	testutil.SkipOnWindows(t)
	f := testutil.NewFixture(t)
	f.CreateFile("elsewhere/node_modules/pkg/index.js", []byte("x"))
	f.CreateSymlink(f.Path("elsewhere"), "home/linked")
	f.CreateSymlink(f.Path("home"), "home/loop")

	paths, err := collect(t, func(fn VisitFunc) error {
		return FindPattern(context.Background(), f.Path("home"), "node_modules", fn)
	})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFindPattern_SkipsUnreadableSubtree(t *testing.T) {
	testutil.SkipOnWindows(t)
	testutil.SkipIfRoot(t)
	f := testutil.NewFixture(t)
	f.CreateFile("home/open/node_modules/a", []byte("x"))
	f.CreateUnreadableDir("home/locked")

	paths, err := collect(t, func(fn VisitFunc) error {
		return FindPattern(context.Background(), f.Path("home"), "node_modules", fn)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{f.Path("home/open/node_modules")}, paths)
}

func TestFindPattern_MissingBase(t *testing.T) {
	f := testutil.NewFixture(t)

	paths, err := collect(t, func(fn VisitFunc) error {
		return FindPattern(context.Background(), f.Path("missing"), "node_modules", fn)
	})
	assert.NoError(t, err)
	assert.Empty(t, paths)
}

func TestFindPattern_Cancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("a/node_modules/x", []byte("x"))
	f.CreateFile("b/node_modules/x", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen []string
	err := FindPattern(ctx, f.RootDir, "node_modules", func(path string, info fs.FileInfo) error {
		seen = append(seen, filepath.Base(filepath.Dir(path)))
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, seen, 1)
}
