package analyst

// AnalysisRequest is the decoded input bundle for one call: the request
// text plus optional image and CSV parts. It lives for one request only.
type AnalysisRequest struct {
	Questions string

	HasImage      bool
	ImageFilename string

	HasCSV  bool
	CSVText string
}
