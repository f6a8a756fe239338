package branch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// ifscServer answers GET /{code} with a branch for codes in names and 404
// otherwise, counting requests per code.
func ifscServer(t *testing.T, names map[string]string, delay time.Duration) (*httptest.Server, *sync.Map) {
	t.Helper()
	counts := &sync.Map{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/")
		v, _ := counts.LoadOrStore(code, new(int64))
		atomic.AddInt64(v.(*int64), 1)
		time.Sleep(delay)
		name, ok := names[code]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"BRANCH":"` + name + `","IFSC":"` + code + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, counts
}

func hits(counts *sync.Map, code string) int64 {
	v, ok := counts.Load(code)
	if !ok {
		return 0
	}
	return atomic.LoadInt64(v.(*int64))
}

func TestResolveCachesAcrossCalls(t *testing.T) {
	srv, counts := ifscServer(t, map[string]string{"ABCD0123456": "Main Branch"}, 0)
	c := NewCache(NewHTTPLookup(srv.URL, WithRateLimit(0, 0)))
	ctx := context.Background()

	assert.Equal(t, "Main Branch", c.Resolve(ctx, "ABCD0123456"))
	assert.Equal(t, "Main Branch", c.Resolve(ctx, " abcd0123456 "))
	assert.EqualValues(t, 1, hits(counts, "ABCD0123456"))
}

func TestResolveFailureIsUnknownAndCached(t *testing.T) {
	srv, counts := ifscServer(t, nil, 0)
	c := NewCache(NewHTTPLookup(srv.URL, WithRateLimit(0, 0)))
	ctx := context.Background()

	assert.Equal(t, Unknown, c.Resolve(ctx, "ZZZZ0000000"))
	assert.Equal(t, Unknown, c.Resolve(ctx, "ZZZZ0000000"))
	assert.EqualValues(t, 1, hits(counts, "ZZZZ0000000"))

	name, ok := c.Cached("ZZZZ0000000")
	assert.True(t, ok)
	assert.Equal(t, Unknown, name)
}

func TestResolveBlankSkipsLookup(t *testing.T) {
	var calls int64
	c := NewCache(LookupFunc(func(context.Context, string) (string, error) {
		atomic.AddInt64(&calls, 1)
		return "x", nil
	}))
	assert.Equal(t, Unknown, c.Resolve(context.Background(), "  "))
	assert.Zero(t, atomic.LoadInt64(&calls))
}

func TestResolveConcurrentDeduplicates(t *testing.T) {
	srv, counts := ifscServer(t, map[string]string{"ABCD0123456": "Main Branch"}, 50*time.Millisecond)
	c := NewCache(NewHTTPLookup(srv.URL, WithRateLimit(0, 0)))

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Resolve(context.Background(), "ABCD0123456")
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "Main Branch", r)
	}
	assert.EqualValues(t, 1, hits(counts, "ABCD0123456"))
}

func TestResolveAllUniqueCodesOnce(t *testing.T) {
	srv, counts := ifscServer(t, map[string]string{
		"ABCD0123456": "Main Branch",
		"SBIN0001234": "Fort",
	}, 10*time.Millisecond)
	c := NewCache(NewHTTPLookup(srv.URL, WithRateLimit(0, 0)))

	got := c.ResolveAll(context.Background(), []string{"ABCD0123456", "SBIN0001234", "ABCD0123456", "", "BAD0000000"})
	assert.Equal(t, "Main Branch", got["ABCD0123456"])
	assert.Equal(t, "Fort", got["SBIN0001234"])
	assert.Equal(t, Unknown, got[""])
	assert.Equal(t, Unknown, got["BAD0000000"])
	assert.EqualValues(t, 1, hits(counts, "ABCD0123456"))
	assert.EqualValues(t, 1, hits(counts, "SBIN0001234"))
	assert.Equal(t, 3, c.Len())
}

func TestResolveCancelledNotCached(t *testing.T) {
	c := NewCache(LookupFunc(func(ctx context.Context, _ string) (string, error) {
		return "", ctx.Err()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, Unknown, c.Resolve(ctx, "SBIN0001234"))
	_, ok := c.Cached("SBIN0001234")
	assert.False(t, ok)
}

func TestResolveCancelledCallerDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int64
	c := NewCache(LookupFunc(func(ctx context.Context, _ string) (string, error) {
		if atomic.AddInt64(&calls, 1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return "Fort", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}))

	ctxA, cancelA := context.WithCancel(context.Background())
	gotA := make(chan string, 1)
	go func() { gotA <- c.Resolve(ctxA, "SBIN0001234") }()
	<-started

	gotB := make(chan string, 1)
	go func() { gotB <- c.Resolve(context.Background(), "SBIN0001234") }()

	cancelA()
	select {
	case name := <-gotA:
		assert.Equal(t, Unknown, name, "the cancelled caller gives up")
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	select {
	case name := <-gotB:
		assert.Equal(t, "Fort", name, "a live caller gets the resolved name")
	case <-time.After(2 * time.Second):
		t.Fatal("live caller did not return")
	}

	name, ok := c.Cached("SBIN0001234")
	assert.True(t, ok)
	assert.Equal(t, "Fort", name)
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestResolveLookupTimeoutIsUnknown(t *testing.T) {
	c := NewCache(LookupFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}))
	c.SetLookupTimeout(20 * time.Millisecond)

	assert.Equal(t, Unknown, c.Resolve(context.Background(), "SBIN0001234"))
	name, ok := c.Cached("SBIN0001234")
	assert.True(t, ok, "a timed-out lookup is a failed lookup")
	assert.Equal(t, Unknown, name)
}

func TestEnrichSkipsWriteBackWhenCancelled(t *testing.T) {
	c := NewCache(LookupFunc(func(context.Context, string) (string, error) {
		return "Fort", nil
	}))
	raw := &trail.RawNode{
		Data: &model.NodeData{Name: model.NewIdentifier("Flow")},
		Children: []*trail.RawNode{{
			Data: &model.NodeData{Name: model.NewIdentifier("V"), IFSC: "SBIN0001234"},
		}},
	}
	tree, err := trail.FromDocument(&trail.Document{Root: raw})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	EnrichTree(ctx, c, tree)
	assert.Empty(t, tree.Root.Children[0].Data.Branch)

	out := EnrichHolds(ctx, c, []model.HoldRow{{AccountNumber: "A", IFSCCode: "SBIN0001234"}})
	assert.Empty(t, out[0].BranchName)

	EnrichTree(context.Background(), c, tree)
	assert.Equal(t, "Fort", tree.Root.Children[0].Data.Branch)
}

func TestHTTPLookupMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewHTTPLookup(srv.URL).Branch(context.Background(), "SBIN0001234")
	require.Error(t, err)
}

func TestEnrichTreeAndHolds(t *testing.T) {
	var calls int64
	c := NewCache(LookupFunc(func(_ context.Context, code string) (string, error) {
		atomic.AddInt64(&calls, 1)
		if code == "SBIN0001234" {
			return "Fort", nil
		}
		return "", errors.New("not found")
	}))

	raw := &trail.RawNode{
		Data: &model.NodeData{Name: model.NewIdentifier("Flow")},
		Children: []*trail.RawNode{{
			Data: &model.NodeData{Name: model.NewIdentifier("V")},
			Children: []*trail.RawNode{
				{Data: &model.NodeData{Name: model.NewIdentifier("A"), IFSC: "SBIN0001234"}},
				{Data: &model.NodeData{Name: model.NewIdentifier("B"), IFSC: "SBIN0001234"}},
				{Data: &model.NodeData{Name: model.NewIdentifier("C"), IFSC: "HDFC0000001"}},
			},
		}},
	}
	tree, err := trail.FromDocument(&trail.Document{Root: raw})
	require.NoError(t, err)

	EnrichTree(context.Background(), c, tree)
	kids := tree.Root.Children[0].Children
	assert.Equal(t, "Fort", kids[0].Data.Branch)
	assert.Equal(t, "Fort", kids[1].Data.Branch)
	assert.Equal(t, Unknown, kids[2].Data.Branch)

	rows := []model.HoldRow{
		{AccountNumber: "A", IFSCCode: "SBIN0001234"},
		{AccountNumber: "X", BranchName: "Given"},
		{AccountNumber: "Y"},
	}
	out := EnrichHolds(context.Background(), c, rows)
	assert.Equal(t, "Fort", out[0].BranchName)
	assert.Equal(t, "Given", out[1].BranchName)
	assert.Equal(t, Unknown, out[2].BranchName)
	assert.Empty(t, rows[0].BranchName, "input rows are not modified")
	assert.EqualValues(t, 2, atomic.LoadInt64(&calls))
}
