package search

import "log"

// Service is the facade that tries Meilisearch first and falls back to
// scanning the ledgers.
type Service struct {
	meili   *Meili
	ledgers *Ledgers
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, ledgers *Ledgers) *Service {
	return &Service{meili: meili, ledgers: ledgers}
}

// Search tries Meilisearch if healthy, otherwise scans the ledgers.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to ledger scan: %v", err)
	}

	results, total, err := s.ledgers.Search(q)
	if err != nil {
		log.Printf("search: ledger scan error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexScan indexes a scan record (fire-and-forget to Meilisearch).
func (s *Service) IndexScan(d ScanDoc) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexScan(d); err != nil {
			log.Printf("search: index scan %s: %v", d.ID, err)
		}
	}()
}

// IndexTrouble indexes a coarse trouble row (fire-and-forget to Meilisearch).
func (s *Service) IndexTrouble(d TroubleDoc) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexTrouble(d); err != nil {
			log.Printf("search: index trouble %s: %v", d.ID, err)
		}
	}()
}

// IndexProblem indexes a problem row (fire-and-forget to Meilisearch).
func (s *Service) IndexProblem(d ProblemDoc) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexProblem(d); err != nil {
			log.Printf("search: index problem %s: %v", d.ID, err)
		}
	}()
}

// DeleteScan removes a scan record from the search index (fire-and-forget).
func (s *Service) DeleteScan(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteScan(id); err != nil {
			log.Printf("search: delete scan %s: %v", id, err)
		}
	}()
}

// DeleteTrouble removes a coarse trouble row from the search index
// (fire-and-forget).
func (s *Service) DeleteTrouble(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteTrouble(id); err != nil {
			log.Printf("search: delete trouble %s: %v", id, err)
		}
	}()
}

// DeleteProblem removes a problem row from the search index (fire-and-forget).
func (s *Service) DeleteProblem(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteProblem(id); err != nil {
			log.Printf("search: delete problem %s: %v", id, err)
		}
	}()
}

// ReindexAll pushes full document sets into Meilisearch.
func (s *Service) ReindexAll(scans []ScanDoc, troubles []TroubleDoc, problems []ProblemDoc) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}

	if len(scans) > 0 {
		if err := s.meili.IndexScans(scans); err != nil {
			log.Printf("search: reindex scans: %v", err)
		}
	}
	if len(troubles) > 0 {
		if err := s.meili.IndexTroubles(troubles); err != nil {
			log.Printf("search: reindex troubles: %v", err)
		}
	}
	if len(problems) > 0 {
		if err := s.meili.IndexProblems(problems); err != nil {
			log.Printf("search: reindex problems: %v", err)
		}
	}
}

// ReindexAllFromLedgers reindexes every ledger row into Meilisearch.
// Called during Bootstrap if Meilisearch is healthy.
func (s *Service) ReindexAllFromLedgers() {
	if s.meili == nil || !s.meili.Healthy() || s.ledgers == nil {
		return
	}
	scans, troubles, problems, err := s.ledgers.LoadAllDocs()
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	s.ReindexAll(scans, troubles, problems)
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
