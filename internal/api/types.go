package api

// Request is an encoded analyze call. Body is a snapshot taken at submission
// time; later edits to the input never reach an in-flight request.
type Request struct {
	Body        []byte
	ContentType string
}

// PerspectivePayload is one entry of the "analysis" object on the wire.
type PerspectivePayload struct {
	Status  string `json:"status"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// Meta carries the service's effective choices for a request.
type Meta struct {
	AnswerLength string `json:"answer_length,omitempty"`
}

// AnalyzeResponse is the success body of POST /analyze.
type AnalyzeResponse struct {
	Analysis map[string]PerspectivePayload `json:"analysis"`
	Meta     *Meta                         `json:"meta,omitempty"`
}

// ReportRequest is the body of POST /generate-pdf.
type ReportRequest struct {
	Analysis     map[string]PerspectivePayload `json:"analysis"`
	AnswerLength string                        `json:"answer_length"`
}

// Report is the binary document returned by the report-rendering service.
type Report struct {
	Data        []byte
	ContentType string
	// Filename is whatever the service suggested in Content-Disposition, if anything.
	Filename string
}

type errorBody struct {
	Detail any `json:"detail"`
}

type healthBody struct {
	Status string `json:"status"`
}

// StatusOK is the healthy value of the health endpoint's status field.
const StatusOK = "ok"
