package search

import "picktrack/api/internal/ledger"

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultScan    ResultType = "scan"
	ResultTrouble ResultType = "trouble"
	ResultProblem ResultType = "problem"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Code    string     `json:"code"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
	Carrier string     `json:"carrier,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text          string
	FilterType    ResultType // empty = all types
	FilterCarrier string
	Limit         int
	Offset        int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push ledger rows into a search index.
type Indexer interface {
	IndexScan(d ScanDoc) error
	IndexTrouble(d TroubleDoc) error
	IndexProblem(d ProblemDoc) error
	DeleteScan(id string) error
	DeleteTrouble(id string) error
	DeleteProblem(id string) error
}

// ScanDoc is the data we index for a scan record.
type ScanDoc struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	Carrier  string   `json:"carrier"`
	Scanners []string `json:"scanners"`
	Remark   string   `json:"remark"`
}

// TroubleDoc is the data we index for a coarse trouble row.
type TroubleDoc struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Comment      string   `json:"comment"`
	Contributors []string `json:"contributors"`
	Carrier      string   `json:"carrier"`
	Result       string   `json:"result"`
}

// ProblemDoc is the data we index for a fine-grained problem row.
type ProblemDoc struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Category string `json:"category"`
	Picker   string `json:"picker"`
	Comment  string `json:"comment"`
	Location string `json:"location"`
	SKU      string `json:"sku"`
	Result   string `json:"result"`
}

// ScanDocFor builds the index document for a scan record.
func ScanDocFor(r ledger.ScanRecord) ScanDoc {
	return ScanDoc{
		ID:       r.Code,
		Code:     r.Code,
		Carrier:  r.Carrier,
		Scanners: r.Scanners,
		Remark:   r.Remark,
	}
}

// TroubleDocFor builds the index document for a coarse trouble row.
func TroubleDocFor(r ledger.TroubleRecord) TroubleDoc {
	return TroubleDoc{
		ID:           r.Code,
		Code:         r.Code,
		Comment:      r.Comment,
		Contributors: r.Contributors,
		Carrier:      r.Carrier,
		Result:       r.Result,
	}
}

// ProblemDocFor builds the index document for a problem row. Rows are
// keyed by (code, category), so the document ID joins both.
func ProblemDocFor(r ledger.ProblemRecord) ProblemDoc {
	return ProblemDoc{
		ID:       ProblemDocID(r.Code, r.Category),
		Code:     r.Code,
		Category: r.Category.String(),
		Picker:   r.PickerMentioned,
		Comment:  r.Comment,
		Location: r.Location,
		SKU:      r.SKU,
		Result:   r.Result,
	}
}

// ProblemDocID is the search-index key for a (code, category) pair.
func ProblemDocID(code string, category ledger.Category) string {
	return code + "_" + category.String()
}
