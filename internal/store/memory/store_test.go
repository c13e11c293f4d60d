package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

func rawJob(url string) pipeline.RawJob {
	return pipeline.RawJob{
		URL:        url,
		Title:      "Backend Engineer",
		Company:    "Acme",
		RawPayload: json.RawMessage(`{"title":"Backend Engineer"}`),
		ScrapedAt:  time.Now().UTC(),
		Source:     "topcv",
	}
}

func TestStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := New()
	ctx := context.Background()

	inserted, err := store.SaveRaw(ctx, rawJob("https://site.com/job/1?utm=x"))
	if err != nil {
		t.Fatalf("SaveRaw() error = %v", err)
	}
	if !inserted {
		t.Fatal("expected first save to insert")
	}

	// Same posting under a decorated URL is a duplicate.
	inserted, err = store.SaveRaw(ctx, rawJob("https://site.com/job/1#apply"))
	if err != nil {
		t.Fatalf("SaveRaw() duplicate error = %v", err)
	}
	if inserted {
		t.Fatal("expected duplicate canonical url to be a no-op")
	}

	known, err := store.KnownURLs(ctx, []string{"https://site.com/job/1", "https://site.com/job/2"})
	if err != nil || len(known) != 1 {
		t.Fatalf("KnownURLs() = %v, err %v", known, err)
	}

	jobs, err := store.FetchUnprocessed(ctx, 10)
	if err != nil || len(jobs) != 1 {
		t.Fatalf("FetchUnprocessed() = %v, err %v", jobs, err)
	}

	clean := pipeline.CleanJob{RawJobID: jobs[0].ID, StandardizedTitle: "Backend Engineer"}
	if err := store.SaveClean(ctx, clean); err != nil {
		t.Fatalf("SaveClean() error = %v", err)
	}
	jobs, err = store.FetchUnprocessed(ctx, 10)
	if err != nil || len(jobs) != 0 {
		t.Fatalf("expected empty backlog after SaveClean, got %v err %v", jobs, err)
	}
	if _, ok := store.GetClean(clean.RawJobID); !ok {
		t.Fatal("expected clean row to be stored")
	}

	count, err := store.CountRaw(ctx)
	if err != nil || count != 1 {
		t.Fatalf("CountRaw() = %d, err %v", count, err)
	}
}

func TestSaveRawValidation(t *testing.T) {
	t.Parallel()

	store := New()
	job := rawJob("https://site.com/job/1")
	job.Company = ""
	if _, err := store.SaveRaw(context.Background(), job); err == nil {
		t.Fatal("expected validation error for missing company")
	}
}

func TestSaveCleanUnknownRawID(t *testing.T) {
	t.Parallel()

	store := New()
	err := store.SaveClean(context.Background(), pipeline.CleanJob{RawJobID: 99})
	if err == nil {
		t.Fatal("expected error for unknown raw job id")
	}
}

func TestFetchUnprocessedOrdering(t *testing.T) {
	t.Parallel()

	store := New()
	ctx := context.Background()
	for _, url := range []string{"https://site.com/job/b", "https://site.com/job/a", "https://site.com/job/c"} {
		if _, err := store.SaveRaw(ctx, rawJob(url)); err != nil {
			t.Fatalf("SaveRaw(%s) error = %v", url, err)
		}
	}

	jobs, err := store.FetchUnprocessed(ctx, 2)
	if err != nil {
		t.Fatalf("FetchUnprocessed() error = %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != 1 || jobs[1].ID != 2 {
		t.Fatalf("expected oldest-first ids [1 2], got %+v", jobs)
	}
}
