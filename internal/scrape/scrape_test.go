package scrape

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const searchHTML = `<html><body>
<div class="job-item-search-result">
  <h3 class="title"><a href="https://site.com/job/1?ta_source=1">AI Engineer</a></h3>
</div>
<div class="job-item-search-result">
  <h3 class="title"><a href="https://site.com/job/2">Data Engineer</a></h3>
</div>
<div class="job-item-search-result">
  <h3 class="title">No link here</h3>
</div>
</body></html>`

func TestApplyLinkSchema(t *testing.T) {
	records, err := Apply(searchHTML, LinkSchema())
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, "https://site.com/job/1?ta_source=1", records[0]["url"])
	require.Equal(t, "https://site.com/job/2", records[1]["url"])
	_, ok := records[2]["url"]
	require.False(t, ok, "missing field must be omitted, not empty")
}

const detailHTML = `<html><body>
<h1>
  Senior Backend
  Engineer
</h1>
<a class="company-name">Acme Corp</a>
<div class="box-item"><i class="fa-sack-dollar"></i><span>15 - 25 triệu</span></div>
<div class="box-item"><i class="fa-location-dot"></i><span>Hà Nội</span></div>
<div class="box-item"><i class="fa-star"></i><span>2 năm</span></div>
<div class="job-description">Mô tả công việc đầy đủ</div>
</body></html>`

func TestApplyDetailSchema(t *testing.T) {
	records, err := Apply(detailHTML, DetailSchema())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, "Senior Backend Engineer", rec["title"], "whitespace must collapse")
	require.Equal(t, "Acme Corp", rec["company"])
	require.Equal(t, "15 - 25 triệu", rec["salary"])
	require.Equal(t, "Hà Nội", rec["location"])
	require.Equal(t, "2 năm", rec["experience"])
	require.Equal(t, "Mô tả công việc đầy đủ", rec["info"])
}

func TestApplyDetailSchemaFallbackSelectors(t *testing.T) {
	// Premium layout: different title and description markup.
	html := `<html><body>
<div class="premium-job-basic-information__content--title"><a>ML Engineer</a></div>
<div class="company-content__title--name">BigCo</div>
<div class="premium-job-description__box--content">Chi tiết công việc</div>
</body></html>`

	records, err := Apply(html, DetailSchema())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "ML Engineer", records[0]["title"])
	require.Equal(t, "BigCo", records[0]["company"])
	require.Equal(t, "Chi tiết công việc", records[0]["info"])
}

func TestApplyJSON(t *testing.T) {
	raw, err := ApplyJSON(detailHTML, DetailSchema())
	require.NoError(t, err)

	var records []map[string]string
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
	require.Equal(t, "Senior Backend Engineer", records[0]["title"])
}

func TestApplyEmptyDocument(t *testing.T) {
	records, err := Apply("<html><body><p>nothing here</p></body></html>", LinkSchema())
	require.NoError(t, err)
	require.Empty(t, records, "no base matches must yield an empty slice, not an error")
}

func TestApplyAttrExtraction(t *testing.T) {
	schema := Schema{
		Name:         "attrs",
		BaseSelector: "div",
		Fields: []Field{
			{Name: "link", Selector: "a", Attr: "href"},
		},
	}
	records, err := Apply(`<div><a href="/x">text</a></div>`, schema)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "/x", records[0]["link"])
}
