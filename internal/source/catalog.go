package source

import "github.com/JakeFAU/regwatch/internal/crawler"

var defaultSources = []crawler.DataSource{
	{
		Name:     "Ministry of Finance",
		URL:      "https://www.finmin.gov.in/",
		Type:     crawler.SourceHTML,
		Category: CategoryCentral,
	},
	{
		Name:     "Press Information Bureau",
		URL:      "https://pib.gov.in/AllRelease.aspx",
		Type:     crawler.SourceHTML,
		Category: CategoryCentral,
	},
	{
		Name:     "Department of Revenue",
		URL:      "https://dor.gov.in/",
		Type:     crawler.SourceHTML,
		Category: CategoryCentral,
	},
	{
		Name:     "Income Tax Notifications",
		URL:      "https://incometaxindia.gov.in/Lists/Latest%20News/AllItems.aspx",
		Type:     crawler.SourceHTML,
		Category: CategoryCentral,
	},
	{
		Name:     "Income Tax Circulars",
		URL:      "https://incometaxindia.gov.in/Lists/Circulars/AllItems.aspx",
		Type:     crawler.SourceHTML,
		Category: CategoryCentral,
	},
	{
		Name:     "CBIC GST",
		URL:      "https://www.cbic.gov.in/htdocs-cbec/gst/",
		Type:     crawler.SourceHTML,
		Category: CategoryCentral,
	},
	{
		Name:     "Customs",
		URL:      "https://www.cbic.gov.in/htdocs-cbec/customs",
		Type:     crawler.SourceHTML,
		Category: CategoryCentral,
	},
	{
		Name:     "Excise",
		URL:      "https://www.cbic.gov.in/htdocs-cbec/excise",
		Type:     crawler.SourceHTML,
		Category: CategoryCentral,
	},
	{
		Name:     "Maharashtra GST Notifications",
		URL:      "https://mahagst.gov.in/en/notifications",
		Type:     crawler.SourceHTML,
		Category: CategoryMaharashtra,
	},
	{
		Name:     "Maharashtra GST Updates",
		URL:      "https://mahagst.gov.in/en/latest-updates",
		Type:     crawler.SourceHTML,
		Category: CategoryMaharashtra,
	},
	{
		Name:     "RBI Notifications",
		URL:      "https://www.rbi.org.in/Scripts/NotificationUser.aspx",
		Type:     crawler.SourceHTML,
		RSS:      "https://www.rbi.org.in/scripts/RSSDisplay.aspx?f=Press",
		Category: CategoryRegulators,
	},
	{
		Name:     "SEBI Circulars",
		URL:      "https://www.sebi.gov.in/sebiweb/home/HomeAction.do?doListing=yes&sid=2",
		Type:     crawler.SourceHTML,
		Category: CategoryRegulators,
	},
	{
		Name:     "IRDAI",
		URL:      "https://irdai.gov.in/circulars",
		Type:     crawler.SourceHTML,
		Category: CategoryRegulators,
	},
}
