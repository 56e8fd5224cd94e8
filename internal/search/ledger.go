package search

import (
	"strings"

	"picktrack/api/internal/ledger"
)

// Ledgers implements Searcher by scanning the flat files directly. It is
// the fallback when Meilisearch is not configured or unreachable.
type Ledgers struct {
	scans    *ledger.ScanLedger
	troubles *ledger.TroubleLedger
	problems *ledger.ProblemLedger
}

// NewLedgers creates a ledger-backed searcher.
func NewLedgers(scans *ledger.ScanLedger, troubles *ledger.TroubleLedger, problems *ledger.ProblemLedger) *Ledgers {
	return &Ledgers{scans: scans, troubles: troubles, problems: problems}
}

// Healthy always returns true: if the data dir is unreadable, the whole
// app is down anyway.
func (l *Ledgers) Healthy() bool {
	return true
}

// Search walks the three ledgers and keeps rows containing the query text
// in any searchable field. Matching is case-insensitive substring; rows
// come back in ledger order, scans first.
func (l *Ledgers) Search(q Query) ([]Result, int, error) {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	var results []Result

	if q.FilterType == "" || q.FilterType == ResultScan {
		rows, err := l.scans.Records()
		if err != nil {
			return nil, 0, err
		}
		for _, r := range rows {
			if q.FilterCarrier != "" && r.Carrier != q.FilterCarrier {
				continue
			}
			if !anyContains(text, r.Code, r.Remark, strings.Join(r.Scanners, " ")) {
				continue
			}
			results = append(results, Result{
				Type:    ResultScan,
				ID:      r.Code,
				Code:    r.Code,
				Title:   r.Code,
				Snippet: r.Remark,
				Carrier: r.Carrier,
			})
		}
	}

	if q.FilterType == "" || q.FilterType == ResultTrouble {
		rows, err := l.troubles.Records()
		if err != nil {
			return nil, 0, err
		}
		for _, r := range rows {
			if q.FilterCarrier != "" && r.Carrier != q.FilterCarrier {
				continue
			}
			if !anyContains(text, r.Code, r.Comment, strings.Join(r.Contributors, " "), r.Result) {
				continue
			}
			results = append(results, Result{
				Type:    ResultTrouble,
				ID:      r.Code,
				Code:    r.Code,
				Title:   r.Code,
				Snippet: r.Comment,
				Carrier: r.Carrier,
			})
		}
	}

	if q.FilterType == "" || q.FilterType == ResultProblem {
		rows, err := l.problems.Records()
		if err != nil {
			return nil, 0, err
		}
		for _, r := range rows {
			if !anyContains(text, r.Code, r.Comment, r.PickerMentioned, r.Location, r.SKU, r.Result, r.Category.String()) {
				continue
			}
			results = append(results, Result{
				Type:    ResultProblem,
				ID:      ProblemDocID(r.Code, r.Category),
				Code:    r.Code,
				Title:   r.Code + " " + r.Category.String(),
				Snippet: r.Comment,
			})
		}
	}

	total := len(results)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return results[offset:end], total, nil
}

// LoadAllDocs returns every indexable row for a full reindex.
func (l *Ledgers) LoadAllDocs() ([]ScanDoc, []TroubleDoc, []ProblemDoc, error) {
	scanRows, err := l.scans.Records()
	if err != nil {
		return nil, nil, nil, err
	}
	scans := make([]ScanDoc, 0, len(scanRows))
	for _, r := range scanRows {
		scans = append(scans, ScanDocFor(r))
	}

	troubleRows, err := l.troubles.Records()
	if err != nil {
		return nil, nil, nil, err
	}
	troubles := make([]TroubleDoc, 0, len(troubleRows))
	for _, r := range troubleRows {
		troubles = append(troubles, TroubleDocFor(r))
	}

	problemRows, err := l.problems.Records()
	if err != nil {
		return nil, nil, nil, err
	}
	problems := make([]ProblemDoc, 0, len(problemRows))
	for _, r := range problemRows {
		problems = append(problems, ProblemDocFor(r))
	}

	return scans, troubles, problems, nil
}

func anyContains(needle string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
