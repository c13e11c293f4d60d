package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/parkhip/ai-job-crawler/internal/pipeline"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewWithPool(mock)
	require.NoError(t, err)
	return store, mock
}

func sampleRaw() pipeline.RawJob {
	return pipeline.RawJob{
		URL:        "https://site.com/job/123",
		Title:      "Backend Engineer",
		Company:    "Acme",
		Location:   "Hà Nội",
		RawPayload: json.RawMessage(`{"title":"Backend Engineer","info":"..."}`),
		ScrapedAt:  time.Unix(1700000000, 0).UTC(),
		Source:     "topcv",
	}
}

func TestInitSchema(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS raw_jobs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.InitSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRawInsertsRow(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	job := sampleRaw()

	mock.ExpectExec("INSERT INTO raw_jobs").
		WithArgs(job.URL, job.Title, job.Company, job.Location, job.RawPayload, job.ScrapedAt, job.Source).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := store.SaveRaw(context.Background(), job)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRawDuplicateIsNoOp(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	job := sampleRaw()

	mock.ExpectExec("INSERT INTO raw_jobs").
		WithArgs(job.URL, job.Title, job.Company, job.Location, job.RawPayload, job.ScrapedAt, job.Source).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := store.SaveRaw(context.Background(), job)
	require.NoError(t, err)
	require.False(t, inserted, "conflicting url must not report an insert")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRawNormalizesURL(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	job := sampleRaw()
	job.URL = "https://site.com/job/123?utm=banner#apply"

	mock.ExpectExec("INSERT INTO raw_jobs").
		WithArgs("https://site.com/job/123", job.Title, job.Company, job.Location, job.RawPayload, job.ScrapedAt, job.Source).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, err := store.SaveRaw(context.Background(), job)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRawRejectsMissingRequiredFields(t *testing.T) {
	t.Parallel()
	store, _ := newMockStore(t)

	job := sampleRaw()
	job.Title = "  "
	job.Company = ""

	_, err := store.SaveRaw(context.Background(), job)
	require.Error(t, err)
	require.Contains(t, err.Error(), "title")
	require.Contains(t, err.Error(), "company")
}

func TestKnownURLs(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	urls := []string{"https://site.com/job/1", "https://site.com/job/2"}
	mock.ExpectQuery("SELECT url FROM raw_jobs").
		WithArgs(urls).
		WillReturnRows(pgxmock.NewRows([]string{"url"}).AddRow("https://site.com/job/1"))

	known, err := store.KnownURLs(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, known, 1)
	require.Contains(t, known, "https://site.com/job/1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKnownURLsEmptyInputSkipsQuery(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	known, err := store.KnownURLs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, known)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchUnprocessed(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	job := sampleRaw()

	rows := pgxmock.NewRows([]string{
		"id", "url", "title", "company", "location", "raw_payload", "scraped_at", "source", "processed",
	}).AddRow(int64(7), job.URL, job.Title, job.Company, job.Location, job.RawPayload, job.ScrapedAt, job.Source, false)

	mock.ExpectQuery("FROM raw_jobs").
		WithArgs(50).
		WillReturnRows(rows)

	jobs, err := store.FetchUnprocessed(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, int64(7), jobs[0].ID)
	require.Equal(t, job.URL, jobs[0].URL)
	require.False(t, jobs[0].Processed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func sampleClean() pipeline.CleanJob {
	level := "Junior"
	desc := "Build services"
	return pipeline.CleanJob{
		RawJobID:           7,
		StandardizedTitle:  "Backend Engineer",
		JobLevel:           &level,
		Cities:             []string{"Hà Nội"},
		MinYearsExperience: 1,
		TechStack:          []string{"Go", "PostgreSQL"},
		Description:        &desc,
	}
}

func TestSaveCleanCommitsBothWrites(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	clean := sampleClean()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO clean_jobs").
		WithArgs(
			clean.RawJobID, clean.StandardizedTitle, clean.JobLevel, clean.IsInternship, clean.Cities,
			clean.MinYearsExperience, clean.MinGPA, clean.EnglishRequirement,
			clean.SalaryMin, clean.SalaryMax, clean.Currency, clean.IsSalaryNegotiable,
			clean.TechStack, clean.TechnicalCompetencies, clean.DomainKnowledge,
			clean.Description, clean.Requirement, clean.Benefit,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE raw_jobs SET processed").
		WithArgs(clean.RawJobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveClean(context.Background(), clean))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCleanRollsBackWhenFlagUpdateFails(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)
	clean := sampleClean()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO clean_jobs").
		WithArgs(
			clean.RawJobID, clean.StandardizedTitle, clean.JobLevel, clean.IsInternship, clean.Cities,
			clean.MinYearsExperience, clean.MinGPA, clean.EnglishRequirement,
			clean.SalaryMin, clean.SalaryMax, clean.Currency, clean.IsSalaryNegotiable,
			clean.TechStack, clean.TechnicalCompetencies, clean.DomainKnowledge,
			clean.Description, clean.Requirement, clean.Benefit,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE raw_jobs SET processed").
		WithArgs(clean.RawJobID).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	require.Error(t, store.SaveClean(context.Background(), clean))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCleanRejectsMissingRawID(t *testing.T) {
	t.Parallel()
	store, _ := newMockStore(t)

	err := store.SaveClean(context.Background(), pipeline.CleanJob{})
	require.Error(t, err)
}

func TestCountRaw(t *testing.T) {
	t.Parallel()
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	count, err := store.CountRaw(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
