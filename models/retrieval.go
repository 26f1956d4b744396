package models

// DefaultTopK is the number of grounding documents requested per analysis
const DefaultTopK = 3

// RetrievalQuery is a similarity search request against the reference index
type RetrievalQuery struct {
	Text string `json:"text"`
	TopK int    `json:"top_k"`
}

// RetrievalHit is one grounding document, ranked by the index
type RetrievalHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
