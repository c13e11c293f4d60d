package discover

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
	"github.com/parkhip/ai-job-crawler/internal/store/memory"
)

const searchHTML = `<html><body>
<div class="job-item-search-result">
  <h3 class="title"><a href="https://site.com/job/1?ta_source=banner">AI Engineer</a></h3>
</div>
<div class="job-item-search-result">
  <h3 class="title"><a href="https://site.com/job/2">Data Engineer</a></h3>
</div>
<div class="job-item-search-result">
  <h3 class="title"><a href="https://site.com/job/1">AI Engineer (dup)</a></h3>
</div>
</body></html>`

const blockHTML = `<html><head><title>Just a moment...</title></head></html>`

type stubRenderer struct {
	result pipeline.RenderResult
	err    error
	calls  int
}

func (r *stubRenderer) Render(context.Context, pipeline.RenderRequest) (pipeline.RenderResult, error) {
	r.calls++
	return r.result, r.err
}

type memArtifact struct {
	written []pipeline.LinkRecord
}

func (a *memArtifact) Write(links []pipeline.LinkRecord) (string, error) {
	a.written = append([]pipeline.LinkRecord(nil), links...)
	return "links/2026-08-30.jsonl", nil
}

func (a *memArtifact) Read(time.Time) ([]pipeline.LinkRecord, error) {
	return a.written, nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func newDiscoverer(renderer pipeline.Renderer, store pipeline.JobStore, artifact pipeline.LinkArtifact) *Discoverer {
	retry := pipeline.RetryPolicy{MaxAttempts: 1}
	clock := fixedClock{at: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)}
	return New(renderer, store, artifact, retry, pipeline.NoopPauser{}, clock,
		Config{SearchURL: "https://www.topcv.vn/tim-viec-lam-ai-engineer?sba=1"}, nil)
}

func TestDiscoverHappyPath(t *testing.T) {
	renderer := &stubRenderer{result: pipeline.RenderResult{Success: true, HTML: searchHTML}}
	artifact := &memArtifact{}
	d := newDiscoverer(renderer, memory.New(), artifact)

	links, err := d.Discover(context.Background(), "testrun")
	require.NoError(t, err)
	require.Len(t, links, 2, "intra-batch duplicate must collapse")

	require.Equal(t, "https://site.com/job/1", links[0].URL, "urls must be canonical")
	require.Equal(t, "https://site.com/job/2", links[1].URL)
	require.Equal(t, "topcv", links[0].Source)
	require.False(t, links[0].ScrapedAt.IsZero())

	require.Equal(t, links, artifact.written, "batch must be persisted for the extract phase")
}

func TestDiscoverFiltersIngestedURLs(t *testing.T) {
	store := memory.New()
	_, err := store.SaveRaw(context.Background(), pipeline.RawJob{
		URL: "https://site.com/job/1", Title: "AI Engineer", Company: "Acme",
	})
	require.NoError(t, err)

	renderer := &stubRenderer{result: pipeline.RenderResult{Success: true, HTML: searchHTML}}
	d := newDiscoverer(renderer, store, &memArtifact{})

	links, err := d.Discover(context.Background(), "testrun")
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Equal(t, "https://site.com/job/2", links[0].URL)
}

func TestDiscoverBlocked(t *testing.T) {
	renderer := &stubRenderer{result: pipeline.RenderResult{Success: true, HTML: blockHTML}}
	artifact := &memArtifact{}
	d := newDiscoverer(renderer, memory.New(), artifact)

	_, err := d.Discover(context.Background(), "testrun")
	require.ErrorIs(t, err, pipeline.ErrBlocked)
	require.Empty(t, artifact.written, "blocked run must not write an artifact")
}

func TestDiscoverNoNewLinks(t *testing.T) {
	store := memory.New()
	for _, u := range []string{"https://site.com/job/1", "https://site.com/job/2"} {
		_, err := store.SaveRaw(context.Background(), pipeline.RawJob{URL: u, Title: "T", Company: "C"})
		require.NoError(t, err)
	}

	renderer := &stubRenderer{result: pipeline.RenderResult{Success: true, HTML: searchHTML}}
	d := newDiscoverer(renderer, store, &memArtifact{})

	_, err := d.Discover(context.Background(), "testrun")
	require.ErrorIs(t, err, pipeline.ErrNoNewLinks)
}

func TestDiscoverEmptySearchPage(t *testing.T) {
	renderer := &stubRenderer{result: pipeline.RenderResult{Success: true, HTML: "<html><body></body></html>"}}
	d := newDiscoverer(renderer, memory.New(), &memArtifact{})

	_, err := d.Discover(context.Background(), "testrun")
	require.ErrorIs(t, err, pipeline.ErrNoNewLinks)
}

func TestDiscoverRenderFailure(t *testing.T) {
	renderer := &stubRenderer{err: context.DeadlineExceeded}
	d := newDiscoverer(renderer, memory.New(), &memArtifact{})

	_, err := d.Discover(context.Background(), "testrun")
	require.Error(t, err)
	require.NotErrorIs(t, err, pipeline.ErrBlocked)
	require.Equal(t, 1, renderer.calls)
}
