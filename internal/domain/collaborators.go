package domain

// IndexHit is a single scored hit returned by the document index collaborator.
type IndexHit struct {
	ID      string
	Title   string
	Content string
	Score   float64
}

// WebCitation is a single citation returned by the web search collaborator.
// Score is optional; providers that rank without scoring leave it at zero.
type WebCitation struct {
	URL     string
	Title   string
	Snippet string
	Score   float64
}

// WebSearchResult carries citations plus provider execution metadata.
type WebSearchResult struct {
	Citations     []WebCitation
	Response      string
	ExecutionTime float64
	Cost          float64
	Confidence    float64
	Provider      string
}
