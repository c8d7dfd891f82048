package fetcher

// Result represents the outcome of fetching a single date.
// It is created per request, consumed by the accumulator, then discarded.
type Result struct {
	// Date is the calendar day that was requested (YYYY-MM-DD)
	Date string

	// Records holds the rows returned for Date, in the order received.
	Records []Record

	// Err contains the reason the date contributed no rows.
	// If Err is not nil, Records is empty.
	Err error
}

// SkipEmpty is the skip reason for a successful response with an empty array.
const SkipEmpty = "empty"

// OK reports whether the result contributes rows.
func (r Result) OK() bool {
	return r.Err == nil && len(r.Records) > 0
}

// SkipReason returns why the date contributed no rows, or "" if it did.
func (r Result) SkipReason() string {
	if r.Err != nil {
		return string(TypeOf(r.Err))
	}
	if len(r.Records) == 0 {
		return SkipEmpty
	}
	return ""
}
