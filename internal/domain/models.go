package domain

// Listing is one row of the cleaned vehicle dataset.
// Age and Kilometer are nil when the source row had no usable value.
type Listing struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Make      string   `json:"make,omitempty"`
	Model     string   `json:"model,omitempty"`
	Year      int      `json:"year"`
	Age       *int     `json:"age,omitempty"`
	Kilometer *float64 `json:"kilometer,omitempty"`
	Price     float64  `json:"price"`
	FuelType  string   `json:"fuel_type"`
	Owner     string   `json:"owner"`

	Transmission     string  `json:"transmission,omitempty"`
	Location         string  `json:"location,omitempty"`
	Color            string  `json:"color,omitempty"`
	SellerType       string  `json:"seller_type,omitempty"`
	Drivetrain       string  `json:"drivetrain,omitempty"`
	EngineCC         float64 `json:"engine_cc,omitempty"`
	MaxPowerBHP      float64 `json:"max_power_bhp,omitempty"`
	Length           float64 `json:"length,omitempty"`
	Width            float64 `json:"width,omitempty"`
	Height           float64 `json:"height,omitempty"`
	SeatingCapacity  float64 `json:"seating_capacity,omitempty"`
	FuelTankCapacity float64 `json:"fuel_tank_capacity,omitempty"`
}

// IntPtr and FloatPtr are small helpers for building listings with optional fields.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }

// BudgetMatch holds both price bands, each sorted ascending by price.
// Primary and Stretch are complete; display truncation happens in QueryResult.
type BudgetMatch struct {
	Budget        float64   `json:"budget"`
	StretchBudget float64   `json:"stretch_budget"`
	Primary       []Listing `json:"primary"`
	Stretch       []Listing `json:"stretch"`
}

type ScoredListing struct {
	Listing      Listing `json:"listing"`
	AgeScore     float64 `json:"age_score"`
	KmScore      float64 `json:"km_score"`
	OverallScore float64 `json:"overall_score"`
}

// Recommendation is the Recommender output. Best is nil when no candidate
// could be scored; Candidates are in ranking order.
type Recommendation struct {
	Best       *ScoredListing  `json:"best"`
	Candidates []ScoredListing `json:"candidates"`
}

type QueryResult struct {
	Preference     Preference     `json:"preference"`
	StretchBudget  float64        `json:"stretch_budget"`
	Primary        []Listing      `json:"primary"`
	PrimaryTotal   int            `json:"primary_total"`
	Stretch        []Listing      `json:"stretch"`
	StretchTotal   int            `json:"stretch_total"`
	Recommendation Recommendation `json:"recommendation"`
	Message        string         `json:"message"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type NumericSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Insights summarizes the distribution of a set of listings per attribute.
type Insights struct {
	Total       int                       `json:"total"`
	Categorical map[string][]ValueCount   `json:"categorical"`
	Numeric     map[string]NumericSummary `json:"numeric"`
}
