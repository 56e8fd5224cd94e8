package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxScans    = "picktrack_scans"
	idxTroubles = "picktrack_troubles"
	idxProblems = "picktrack_problems"
)

// Meili implements Searcher and Indexer via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures indexes.
// The instance starts unhealthy if the initial connection fails; the
// background monitor keeps retrying.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	// Initial health check
	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndexes() {
	indexes := []struct {
		uid        string
		primaryKey string
		filterable []string
		searchable []string
	}{
		{
			uid:        idxScans,
			primaryKey: "id",
			filterable: []string{"carrier"},
			searchable: []string{"code", "remark", "scanners"},
		},
		{
			uid:        idxTroubles,
			primaryKey: "id",
			filterable: []string{"carrier"},
			searchable: []string{"code", "comment", "contributors", "result"},
		},
		{
			uid:        idxProblems,
			primaryKey: "id",
			filterable: []string{"category"},
			searchable: []string{"code", "comment", "picker", "location", "sku", "result"},
		},
	}

	for _, idx := range indexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: idx.primaryKey,
		}); err != nil {
			log.Printf("search: create index %s (may already exist): %v", idx.uid, err)
		}

		index := m.client.Index(idx.uid)
		filterableInterface := make([]interface{}, len(idx.filterable))
		for i, v := range idx.filterable {
			filterableInterface[i] = v
		}
		if _, err := index.UpdateFilterableAttributes(&filterableInterface); err != nil {
			log.Printf("search: update filterable attrs for %s: %v", idx.uid, err)
		}
		if _, err := index.UpdateSearchableAttributes(&idx.searchable); err != nil {
			log.Printf("search: update searchable attrs for %s: %v", idx.uid, err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries all three indexes (or a filtered subset) and merges results.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	var queries []*meili.SearchRequest
	targetIndexes := []struct {
		uid  string
		rtyp ResultType
	}{
		{idxScans, ResultScan},
		{idxTroubles, ResultTrouble},
		{idxProblems, ResultProblem},
	}

	for _, ti := range targetIndexes {
		if q.FilterType != "" && q.FilterType != ti.rtyp {
			continue
		}
		sr := &meili.SearchRequest{
			IndexUID:              ti.uid,
			Limit:                 limit,
			Offset:                int64(q.Offset),
			AttributesToHighlight: []string{"*"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
			ShowRankingScore:      true,
		}

		// Problem rows carry no carrier of their own.
		if q.FilterCarrier != "" && ti.rtyp != ResultProblem {
			sr.Filter = []string{fmt.Sprintf("carrier = %q", q.FilterCarrier)}
		}
		queries = append(queries, sr)
	}

	if len(queries) == 0 {
		return nil, 0, nil
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: queries,
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []Result
	total := 0
	for _, sr := range resp.Results {
		total += int(sr.EstimatedTotalHits)
		rtyp := indexToResultType(sr.IndexUID)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit, rtyp))
		}
	}

	return results, total, nil
}

func indexToResultType(uid string) ResultType {
	switch uid {
	case idxScans:
		return ResultScan
	case idxTroubles:
		return ResultTrouble
	case idxProblems:
		return ResultProblem
	default:
		return ""
	}
}

func hitToResult(hit meili.Hit, rtyp ResultType) Result {
	r := Result{Type: rtyp}
	r.ID = decodeString(hit, "id")
	r.Code = decodeString(hit, "code")
	r.Carrier = decodeString(hit, "carrier")
	r.Title = r.Code

	switch rtyp {
	case ResultScan:
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "remark"), decodeString(hit, "remark"))
	case ResultTrouble:
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "comment"), decodeString(hit, "comment"))
	case ResultProblem:
		r.Title = strings.TrimSpace(r.Code + " " + decodeString(hit, "category"))
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "comment"), decodeString(hit, "comment"))
	}
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// IndexScan adds or updates a scan record in the search index.
func (m *Meili) IndexScan(d ScanDoc) error {
	_, err := m.client.Index(idxScans).AddDocuments([]ScanDoc{d}, nil)
	return err
}

// IndexTrouble adds or updates a coarse trouble row in the search index.
func (m *Meili) IndexTrouble(d TroubleDoc) error {
	_, err := m.client.Index(idxTroubles).AddDocuments([]TroubleDoc{d}, nil)
	return err
}

// IndexProblem adds or updates a problem row in the search index.
func (m *Meili) IndexProblem(d ProblemDoc) error {
	_, err := m.client.Index(idxProblems).AddDocuments([]ProblemDoc{d}, nil)
	return err
}

// DeleteScan removes a scan record from the search index.
func (m *Meili) DeleteScan(id string) error {
	_, err := m.client.Index(idxScans).DeleteDocument(id, nil)
	return err
}

// DeleteTrouble removes a coarse trouble row from the search index.
func (m *Meili) DeleteTrouble(id string) error {
	_, err := m.client.Index(idxTroubles).DeleteDocument(id, nil)
	return err
}

// DeleteProblem removes a problem row from the search index.
func (m *Meili) DeleteProblem(id string) error {
	_, err := m.client.Index(idxProblems).DeleteDocument(id, nil)
	return err
}

// IndexScans bulk-indexes scan records.
func (m *Meili) IndexScans(docs []ScanDoc) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := m.client.Index(idxScans).AddDocuments(docs, nil)
	return err
}

// IndexTroubles bulk-indexes coarse trouble rows.
func (m *Meili) IndexTroubles(docs []TroubleDoc) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := m.client.Index(idxTroubles).AddDocuments(docs, nil)
	return err
}

// IndexProblems bulk-indexes problem rows.
func (m *Meili) IndexProblems(docs []ProblemDoc) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := m.client.Index(idxProblems).AddDocuments(docs, nil)
	return err
}
