package fred

// apiEnvelope carries the in-band error fields FRED attaches to any
// response, including ones delivered with HTTP 200.
type apiEnvelope struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// apiObservation is a raw observation as FRED serializes it. Value is a
// string because FRED reports missing days as ".".
type apiObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations []apiObservation `json:"observations"`
}

// apiSeries is one entry of a category listing. The doubled "seriess" key
// below is FRED's, not ours.
type apiSeries struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Units      string `json:"units"`
	Popularity int    `json:"popularity"`
}

type categorySeriesResponse struct {
	Series []apiSeries `json:"seriess"`
}
