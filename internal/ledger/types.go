package ledger

// Record is the shape persisted in the solicitation ledger table. One
// record per (order, solicitation type); written once, never updated.
type Record struct {
	OrderID          string `dynamodbav:"order_id"`          // PK
	SolicitationType string `dynamodbav:"solicitation_type"` // SK
	MetadataVersion  string `dynamodbav:"metadata_version"`
	DateCreatedUTC   string `dynamodbav:"date_created_utc"`
}
