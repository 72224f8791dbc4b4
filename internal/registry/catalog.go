package registry

// catalog is the built-in endpoint table. Order matters: List and
// CandidatesFor preserve it, and the aggregator invokes candidates in this
// order.
var catalog = []Endpoint{
	{
		ID:          "congress-bills",
		Name:        "Congress.gov Bills",
		Category:    "Congress",
		Description: "Search and retrieve bills from the U.S. Congress.",
		URL:         "https://api.congress.gov/v3/bill",
		Method:      "GET",
		RequiresKey: true,
		KeyName:     "api_key",
		KeyLocation: KeyInQuery,
		SecretName:  "CONGRESS_GOV_API_KEY",
		Keywords:    []string{"congress", "bills", "legislation", "law"},
		Example:     "/gov/dataset?name=congress-bills&params={\"q\":\"appropriations\",\"limit\":20}",
	},
	{
		ID:          "congress-members",
		Name:        "Congress.gov Members",
		Category:    "Congress",
		Description: "Current and historical members of Congress.",
		URL:         "https://api.congress.gov/v3/member",
		Method:      "GET",
		RequiresKey: true,
		KeyName:     "api_key",
		KeyLocation: KeyInQuery,
		SecretName:  "CONGRESS_GOV_API_KEY",
		Keywords:    []string{"congress", "members", "house", "senate"},
		Example:     "/gov/dataset?name=congress-members&params={\"congress\":\"118\"}",
	},
	{
		ID:          "fedreg-facets",
		Name:        "Federal Register Document Facets",
		Category:    "Federal Register",
		Description: "Document counts by daily, weekly, monthly, or quarterly facets.",
		URL:         "https://www.federalregister.gov/api/v1/documents/facets/{facet}",
		Method:      "GET",
		RequiresKey: false,
		Keywords:    []string{"federal register", "regulations", "rules", "notices"},
		Example:     "/gov/dataset?name=fedreg-facets&params={\"facet\":\"daily\"}",
	},
	{
		ID:          "govinfo-search",
		Name:        "GovInfo Content Search",
		Category:    "GovInfo",
		Description: "Full-text search across all GovInfo collections.",
		URL:         "https://api.govinfo.gov/search",
		Method:      "POST",
		RequiresKey: true,
		KeyName:     "X-Api-Key",
		KeyLocation: KeyInHeader,
		SecretName:  "GOVINFO_API_KEY",
		Keywords:    []string{"govinfo", "documents", "publications"},
		Example:     "/gov/dataset?name=govinfo-search&params={\"query\":\"federal documents\",\"pageSize\":10}",
	},
	{
		ID:          "govinfo-collections",
		Name:        "GovInfo Collections",
		Category:    "GovInfo",
		Description: "List of available GovInfo collections.",
		URL:         "https://api.govinfo.gov/collections",
		Method:      "GET",
		RequiresKey: true,
		KeyName:     "X-Api-Key",
		KeyLocation: KeyInHeader,
		SecretName:  "GOVINFO_API_KEY",
		Keywords:    []string{"govinfo", "collections"},
		Example:     "/gov/dataset?name=govinfo-collections",
	},
	{
		ID:          "trade-csl",
		Name:        "Trade.gov Consolidated Screening List",
		Category:    "Trade",
		Description: "Consolidated export screening list from the U.S. government.",
		URL:         "https://api.trade.gov/v1/consolidated_screening_list/search",
		Method:      "GET",
		RequiresKey: true,
		KeyName:     "Subscription-Key",
		KeyLocation: KeyInHeader,
		SecretName:  "TRADE_GOV_API_KEY",
		Keywords:    []string{"trade", "commerce", "exports", "imports"},
		Example:     "/gov/dataset?name=trade-csl&params={\"q\":\"John Doe\"}",
	},
	{
		ID:          "fcc-licenses",
		Name:        "FCC Licenses",
		Category:    "Technology",
		Description: "Query and retrieve data from the FCC licensing database.",
		URL:         "https://data.fcc.gov/api/license-view/v1/licenses",
		Method:      "GET",
		RequiresKey: false,
		Keywords:    []string{"fcc", "licenses", "telecom", "radio"},
		Example:     "/gov/dataset?name=fcc-licenses&params={\"licenseeName\":\"AT&T\"}",
	},
	{
		ID:          "usaspending-awards",
		Name:        "USAspending Awards",
		Category:    "Finance",
		Description: "Federal government spending by award.",
		URL:         "https://api.usaspending.gov/api/v2/search/spending_by_award/",
		Method:      "POST",
		RequiresKey: false,
		Keywords:    []string{"spending", "finance", "budget", "government contracts"},
		Example:     "/gov/dataset?name=usaspending-awards&params={\"filters\":{\"award_type_codes\":[\"A\"]},\"limit\":10}",
	},
	{
		ID:          "fec-candidates",
		Name:        "OpenFEC Candidates",
		Category:    "Politics",
		Description: "Federal election campaigns, candidates, and committees.",
		URL:         "https://api.open.fec.gov/v1/candidates/search/",
		Method:      "GET",
		RequiresKey: true,
		KeyName:     "api_key",
		KeyLocation: KeyInQuery,
		SecretName:  "FEC_API_KEY",
		Keywords:    []string{"fec", "elections", "campaign finance", "politics", "candidates"},
		Example:     "/gov/dataset?name=fec-candidates&params={\"q\":\"Smith\"}",
	},
	{
		ID:          "nrel-rates",
		Name:        "NREL Utility Rates",
		Category:    "Energy",
		Description: "Renewable energy and utility rate data.",
		URL:         "https://developer.nrel.gov/api/utility_rates/v3.json",
		Method:      "GET",
		RequiresKey: true,
		KeyName:     "api_key",
		KeyLocation: KeyInQuery,
		SecretName:  "NREL_API_KEY",
		Keywords:    []string{"nrel", "energy", "renewable", "solar", "wind"},
		Example:     "/gov/dataset?name=nrel-rates&params={\"address\":\"1600 Pennsylvania Ave NW\"}",
	},
	{
		ID:          "cdc-overdose-rates",
		Name:        "CDC Drug Overdose Death Rates",
		Category:    "CDC Data",
		Description: "CDC Wonder data on drug overdose death rates.",
		URL:         "https://data.cdc.gov/api/views/95ax-ymtc/rows.json",
		Method:      "GET",
		RequiresKey: false,
		Keywords:    []string{"cdc", "health", "overdose", "mortality"},
		Example:     "/gov/dataset?name=cdc-overdose-rates",
	},
	{
		ID:          "usitc-hts",
		Name:        "Harmonized Tariff Schedule",
		Category:    "Trade",
		Description: "Harmonized Tariff Schedule of the United States.",
		URL:         "https://www.usitc.gov/sites/default/files/tata/hts/hts_2026_basic_edition_json.json",
		Method:      "GET",
		RequiresKey: false,
		Keywords:    []string{"tariff", "hts", "trade", "customs"},
		Example:     "/gov/dataset?name=usitc-hts",
	},
	{
		ID:          "dot-border-crossings",
		Name:        "Border Crossing Entry Data",
		Category:    "Transportation",
		Description: "Border crossing and entry data from the Bureau of Transportation Statistics.",
		URL:         "https://data.transportation.gov/api/views/keg4-3bc2/rows.json",
		Method:      "GET",
		RequiresKey: false,
		Keywords:    []string{"border", "transportation", "crossings"},
		Example:     "/gov/dataset?name=dot-border-crossings",
	},
	{
		ID:          "nara-records-stats",
		Name:        "National Archives Records Statistics",
		Category:    "National Archives",
		Description: "Statistics about records held by the National Archives.",
		URL:         "https://catalog.archives.gov/api/v2/records/stats",
		Method:      "GET",
		RequiresKey: false,
		Keywords:    []string{"archives", "records", "nara", "history"},
		Example:     "/gov/dataset?name=nara-records-stats",
	},
}
