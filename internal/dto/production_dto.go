package dto

// ProductionReportRequest is the device ingestion payload (POST /production).
// Timestamp is optional; when present it must match 2006-01-02T15:04:05 and
// is interpreted in the server's configured time zone.
type ProductionReportRequest struct {
	ProductID  string `json:"productId"  validate:"required,uuid"`
	OperatorID string `json:"operatorId" validate:"required,uuid"`
	Quantity   int    `json:"quantity"   validate:"required,min=1"`
	Timestamp  string `json:"timestamp"`
}

type ProductionReportResponse struct {
	Message string `json:"message"`
	Balance int    `json:"balance"`
}
