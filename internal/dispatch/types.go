package dispatch

// Outcome is the recorded result of dispatching one endpoint. A backend that
// was not selected leaves its response and status nil. Bodies are never truncated.
type Outcome struct {
	URL              string  `json:"url"`
	Method           string  `json:"method"`
	BackendAResponse *string `json:"aiohttp_response"`
	BackendAStatus   *int    `json:"aiohttp_status"`
	BackendBResponse *string `json:"tls_response"`
	BackendBStatus   *int    `json:"tls_status"`
}

// BackendResult is one backend's view of an outcome.
type BackendResult struct {
	Name   string
	Status int
	Body   string
}

// Results lists the populated backend results, backend A first.
func (o Outcome) Results(nameA, nameB string) []BackendResult {
	var out []BackendResult
	if o.BackendAStatus != nil && o.BackendAResponse != nil {
		out = append(out, BackendResult{Name: nameA, Status: *o.BackendAStatus, Body: *o.BackendAResponse})
	}
	if o.BackendBStatus != nil && o.BackendBResponse != nil {
		out = append(out, BackendResult{Name: nameB, Status: *o.BackendBStatus, Body: *o.BackendBResponse})
	}
	return out
}
