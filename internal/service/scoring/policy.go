package scoring

// Weights maps each category to its share of the overall score. They sum to 1.0.
type Weights struct {
	Performance   float64
	SEO           float64
	Accessibility float64
	Security      float64
	Conversion    float64
}

// Policy holds every tunable constant of the website audit.
type Policy struct {
	Weights Weights

	// Overall scores are rescaled from 0-100 to 0-10 by this divisor, then clamped.
	OverallDivisor float64
	OverallMin     int
	OverallMax     int

	// Fixed baselines; these categories are not measured.
	PerformanceBaseline   int
	AccessibilityBaseline int

	SEOStart              int
	SEOMissingH1          int
	SEOMissingDescription int
	SEOMissingTitle       int

	ConversionContactKeyword int
	ConversionButtons        int
	ConversionButtonMinimum  int
	ConversionSwissPhone     int

	SecurityBase int
	SecurityHSTS int
	SecurityCSP  int
}

// DefaultPolicy is the scoring policy used for every scan.
var DefaultPolicy = Policy{
	Weights: Weights{
		Performance:   0.30,
		SEO:           0.20,
		Accessibility: 0.10,
		Security:      0.15,
		Conversion:    0.25,
	},
	OverallDivisor: 10,
	OverallMin:     1,
	OverallMax:     10,

	PerformanceBaseline:   50,
	AccessibilityBaseline: 60,

	SEOStart:              100,
	SEOMissingH1:          20,
	SEOMissingDescription: 20,
	SEOMissingTitle:       10,

	ConversionContactKeyword: 40,
	ConversionButtons:        30,
	ConversionButtonMinimum:  3,
	ConversionSwissPhone:     30,

	SecurityBase: 50,
	SecurityHSTS: 20,
	SecurityCSP:  30,
}

var (
	contactKeywords = []string{"kontakt", "contact", "telefon", "phone", "appeler"}
	shopKeywords    = []string{"warenkorb", "cart", "panier", "carrello", "shop", "kasse", "checkout"}
	imprintKeywords = []string{"impressum", "imprint", "mentions légales"}
)

const (
	swissPhonePrefix = "+41"
	buttonSelector   = "button, a.button, .btn"
	cartSelector     = `.fa-shopping-cart, .cart-icon, [class*="cart"]`
)
