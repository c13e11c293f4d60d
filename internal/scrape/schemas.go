package scrape

// Selector schemas for the job board. The detail selectors are long
// fallback chains because the site serves several page layouts
// (standard, premium, brand) with different markup.

// LinkSchema extracts posting URLs from a search-results page.
func LinkSchema() Schema {
	return Schema{
		Name:         "job-links",
		BaseSelector: ".job-item-search-result",
		Fields: []Field{
			{Name: "url", Selector: "h3.title a", Attr: "href"},
		},
	}
}

// LinkWaitSelector is the element the renderer waits for before the
// search page counts as loaded.
const LinkWaitSelector = ".job-item-search-result"

// DetailSchema extracts the raw fields of a single posting page.
func DetailSchema() Schema {
	return Schema{
		Name:         "job-detail",
		BaseSelector: "html",
		Fields: []Field{
			{
				Name: "title",
				Selector: "h1, " +
					".job-detail__info--title, " +
					".job-detail-title, " +
					".title-job, " +
					".premium-job-basic-information__content--title a, " +
					"h2.title, " +
					"#header-job-info h2, " +
					"title",
			},
			{
				Name: "company",
				Selector: ".company-name-label a, " +
					".company-content__title--name, " +
					".box-info-job .company-title, " +
					"a.company-name, " +
					".sidebar-brand-name, " +
					".box-company-name, " +
					".company-name, " +
					".breadcrumb li:nth-last-child(2) a, " +
					"title",
			},
			{
				Name: "salary",
				Selector: ".section-salary .job-detail__info--section-content-value, " +
					".box-item:has(.fa-money-bill-wave) span, " +
					".box-item:has(.fa-sack-dollar) span",
			},
			{
				Name: "location",
				Selector: ".section-location .job-detail__info--section-content-value, " +
					".box-item:has(.fa-location-dot) span, " +
					".box-item:has(.fa-map-marker-alt) span",
			},
			{
				Name: "experience",
				Selector: "#job-detail-info-experience .job-detail__info--section-content-value, " +
					".box-item:has(.fa-star) span",
			},
			{
				Name: "info",
				Selector: ".job-description, " +
					".premium-job-description__box--content, " +
					".content-tab, " +
					"#box-job-information",
			},
		},
	}
}

// DetailWaitSelector is the readiness marker for posting pages.
const DetailWaitSelector = "h1, h2.title, .job-detail-title"
