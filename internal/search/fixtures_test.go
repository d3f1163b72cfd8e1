package search

import (
	"testing"

	"github.com/randalmurphal/service-finder/internal/catalog"
	"github.com/randalmurphal/service-finder/internal/config"
	"github.com/randalmurphal/service-finder/internal/index"
)

func prio(v float64) catalog.Priority {
	return catalog.Priority{Value: v, Set: true}
}

func fixtureEntries() []catalog.Entry {
	return []catalog.Entry{
		{
			ID:       "water-billing",
			Name:     "Water Bill Payment",
			Org:      "Utilities",
			Summary:  "Pay your water bill online or by phone.",
			Tags:     []string{"water", "bill", "payment", "utilities"},
			Contact:  catalog.Contact{Phone: "(765) 456-1234"},
			Links:    []catalog.Link{{Type: catalog.LinkPayment, Label: "Pay online", URL: "https://example.gov/pay"}},
			Priority: prio(80),
		},
		{
			ID:       "pothole",
			Name:     "Pothole Reporting",
			Org:      "Public Works",
			Summary:  "Report potholes and road damage.",
			Tags:     []string{"pothole", "report", "roads", "street"},
			Links:    []catalog.Link{},
			Priority: prio(70),
		},
		{
			ID:      "trash",
			Name:    "Trash & Recycling Pickup",
			Org:     "Sanitation",
			Summary: "Weekly curbside trash and recycling collection schedule.",
			Tags:    []string{"trash", "recycling", "pickup"},
			Links:   []catalog.Link{},
		},
		{
			ID:      "school",
			Name:    "Lincoln Elementary School",
			Org:     "School District",
			Summary: "Main office phone and enrollment.",
			Tags:    []string{"school", "elementary", "enroll"},
			Links:   []catalog.Link{},
		},
		{
			ID:      "police",
			Name:    "Police Non-Emergency",
			Org:     "Police Department",
			Summary: "Non-emergency line for police.",
			Tags:    []string{"police", "phone"},
			Links:   []catalog.Link{},
		},
	}
}

func fixtureCatalog() *catalog.Catalog {
	return catalog.New(fixtureEntries())
}

// newTestEngine builds an engine over the fixture catalog with the real
// index and default configuration.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cat := fixtureCatalog()
	return NewEngine(cat, index.New(cat.Entries()), config.DefaultConfig())
}

// fakeIndex returns canned hits and records the last call.
type fakeIndex struct {
	hits      []index.Hit
	calls     int
	lastQuery string
	lastOpts  index.Options
}

func (f *fakeIndex) Search(query string, opts index.Options) []index.Hit {
	f.calls++
	f.lastQuery = query
	f.lastOpts = opts
	return f.hits
}

func defaultRankOptions() RankOptions {
	cfg := config.DefaultConfig()
	return RankOptions{
		TopN:            cfg.Ranking.TopN,
		BrowseN:         cfg.Ranking.BrowseN,
		PriorityWeight:  cfg.Ranking.PriorityWeight,
		DefaultPriority: cfg.Ranking.DefaultPriority,
		Prefix:          cfg.Ranking.Prefix,
		Fuzzy:           cfg.Ranking.Fuzzy,
		DefaultBoost:    cfg.Ranking.DefaultBoost,
	}
}
