package entity

// CategoryScores holds the per-category website audit scores, each in [0,100].
type CategoryScores struct {
	Performance   int `json:"performance"`
	SEO           int `json:"seo"`
	Accessibility int `json:"accessibility"`
	Security      int `json:"security"`
	Conversion    int `json:"conversion"`
}

// ScanResult is the outcome of auditing a single website.
type ScanResult struct {
	OverallScore   int            `json:"overall_score"`
	HasWebshop     bool           `json:"has_webshop"`
	Owner          *string        `json:"owner"`
	CategoryScores CategoryScores `json:"category_scores"`
	Issues         []string       `json:"issues"`
	QuickWins      []string       `json:"quick_wins"`
}
