package item

// Source identifies which adapter produced a search hit.
type Source string

// Source constants.
const (
	SourceDocument Source = "document"
	SourceWeb      Source = "web"
)

// Item is a single scored search hit. Items are never mutated after
// creation, only reordered or truncated by the combiner.
type Item struct {
	title      string
	content    string
	url        string
	source     Source
	score      float64
	resultType string
}

// New creates a search item. Score is clamped to [0,1].
func New(title, content, url string, source Source, score float64, resultType string) Item {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return Item{
		title: title, content: content, url: url,
		source: source, score: score, resultType: resultType,
	}
}

// Title returns the hit title.
func (i *Item) Title() string { return i.title }

// Content returns the hit content or snippet.
func (i *Item) Content() string { return i.content }

// URL returns the hit location.
func (i *Item) URL() string { return i.url }

// Source returns the producing adapter kind.
func (i *Item) Source() Source { return i.source }

// Score returns the normalized relevance score in [0,1].
func (i *Item) Score() float64 { return i.score }

// ResultType returns the provider-specific result kind.
func (i *Item) ResultType() string { return i.resultType }
