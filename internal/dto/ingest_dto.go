package dto

// IngestDocument is one unit written to a collection: a chunk of a source
// text, a whole article, or a counseling exchange.
type IngestDocument struct {
	Id       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// IngestBatchMessage is the payload carried on the ingestion topic.
type IngestBatchMessage struct {
	Collection string           `json:"collection"`
	Documents  []IngestDocument `json:"documents"`
}
