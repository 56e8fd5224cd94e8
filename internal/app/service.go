package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"picktrack/api/internal/audit"
	"picktrack/api/internal/auth"
	"picktrack/api/internal/authpw"
	"picktrack/api/internal/backup"
	"picktrack/api/internal/config"
	"picktrack/api/internal/export"
	"picktrack/api/internal/ledger"
	"picktrack/api/internal/registry"
	"picktrack/api/internal/search"
	"picktrack/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserName     string
	JTI          string
	ExpiresAt    time.Time
}

// ProblemInput is one fine-grained problem report.
type ProblemInput struct {
	Code               string `json:"code"`
	Category           string `json:"category"`
	ReferencedCategory string `json:"referencedCategory"`
	Picker             string `json:"picker"`
	Comment            string `json:"comment"`
	Location           string `json:"location"`
	SKU                string `json:"sku"`
	Quantity           string `json:"quantity"`
}

// SessionStore keeps refresh tokens, hashed, until they expire or are
// revoked.
type SessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userName string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (string, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

// Ledgers bundles the flat-file stores the service mutates.
type Ledgers struct {
	Picks    *ledger.PickList
	Scans    *ledger.ScanLedger
	Troubles *ledger.TroubleLedger
	Problems *ledger.ProblemLedger
}

type Service struct {
	cfg       config.Config
	registry  *registry.Registry
	picks     *ledger.PickList
	scans     *ledger.ScanLedger
	troubles  *ledger.TroubleLedger
	problems  *ledger.ProblemLedger
	passwords *authpw.Service
	sessions  SessionStore
	search    *search.Service
	export    *export.Service
	audit     *audit.Service
	backup    *backup.Service
}

// New wires the service. search, audit, and backup may be nil when the
// matching backends are not configured.
func New(cfg config.Config, reg *registry.Registry, ledgers Ledgers, passwords *authpw.Service, sessions SessionStore, searchSvc *search.Service, exportSvc *export.Service, auditSvc *audit.Service, backupSvc *backup.Service) *Service {
	return &Service{
		cfg:       cfg,
		registry:  reg,
		picks:     ledgers.Picks,
		scans:     ledgers.Scans,
		troubles:  ledgers.Troubles,
		problems:  ledgers.Problems,
		passwords: passwords,
		sessions:  sessions,
		search:    searchSvc,
		export:    exportSvc,
		audit:     auditSvc,
		backup:    backupSvc,
	}
}

// Bootstrap seeds the registries, starts the audit trail, and fills the
// search indexes from whatever the flat files already hold.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.registry.Seed(); err != nil {
		return fmt.Errorf("seed registries: %w", err)
	}
	if s.audit != nil {
		if err := s.audit.Init(); err != nil {
			return fmt.Errorf("init audit trail: %w", err)
		}
	}
	if s.search != nil {
		s.search.ReindexAllFromLedgers()
	}
	return nil
}

// Ping reports whether the data directory is reachable.
func (s *Service) Ping(ctx context.Context) error {
	_, err := os.Stat(s.cfg.DataDir)
	return err
}

// --- Sessions ---

func (s *Service) SignUp(ctx context.Context, name, password string) (Session, error) {
	userName := strings.TrimSpace(name)
	if userName == "" {
		return Session{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	if err := s.passwords.SignUp(userName, password); err != nil {
		return Session{}, domainError(http.StatusBadRequest, "SIGNUP_FAILED", err.Error(), nil)
	}
	s.recordAudit(userName, "account created: "+userName)
	return s.issueSession(ctx, userName)
}

func (s *Service) SignIn(ctx context.Context, name, password string) (Session, error) {
	userName := strings.TrimSpace(name)
	if err := s.passwords.SignIn(userName, password); err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid name or password", nil)
	}
	return s.issueSession(ctx, userName)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	userName, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, userName)
}

func (s *Service) issueSession(ctx context.Context, userName string) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Name: userName,
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), userName, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserName:     userName,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	// A deleted account invalidates its outstanding tokens.
	if _, ok, err := s.registry.PasswordHash(claims.Name); err != nil {
		return Session{}, err
	} else if !ok {
		return Session{}, auth.ErrInvalidToken
	}
	return Session{
		Token:     token,
		UserName:  claims.Name,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// --- Pick lists ---

// AddPickList stores a code with its carrier binding. Rebinding an
// existing code to a different carrier is rejected; the scan paths depend
// on the binding staying put.
func (s *Service) AddPickList(code, carrier, actor string) (map[string]any, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := ledger.ValidateCode(code); err != nil {
		return nil, domainError(http.StatusUnprocessableEntity, "INVALID_CODE", err.Error(), nil)
	}
	carrier = strings.TrimSpace(carrier)
	if carrier == "" {
		carrier = registry.DefaultName
	}

	existing, found, err := s.picks.Carrier(code)
	if err != nil {
		return nil, err
	}
	if found && existing != carrier {
		return nil, domainError(http.StatusConflict, "CARRIER_MISMATCH",
			fmt.Sprintf("code %s is bound to carrier %s", code, existing),
			map[string]any{"code": code, "carrier": existing})
	}

	if err := s.registry.EnsureCarrier(carrier); err != nil {
		return nil, err
	}
	if err := s.picks.Upsert(code, carrier); err != nil {
		return nil, err
	}
	s.recordAudit(actor, "picklist add "+code)
	return map[string]any{"code": code, "carrier": carrier}, nil
}

// GenerateRange mints a day's serial block of codes and stores them all
// under one carrier. The date defaults to today when empty.
func (s *Service) GenerateRange(carrier, date string, start, count int, actor string) ([]string, error) {
	if count < 1 || count > 500 {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "count must be between 1 and 500", nil)
	}
	if start < 1 {
		start = 1
	}
	if date == "" {
		date = time.Now().Format("0102")
	}
	if len(date) != 4 {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "date must be MMDD", nil)
	}
	carrier = strings.TrimSpace(carrier)
	if carrier == "" {
		carrier = registry.DefaultName
	}
	if err := s.registry.EnsureCarrier(carrier); err != nil {
		return nil, err
	}

	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code := fmt.Sprintf("PL625%s%04d", date, start+i)
		if err := ledger.ValidateCode(code); err != nil {
			return nil, domainError(http.StatusUnprocessableEntity, "INVALID_CODE", err.Error(), nil)
		}
		if err := s.picks.Upsert(code, carrier); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	s.recordAudit(actor, fmt.Sprintf("picklist range %s x%d", codes[0], count))
	return codes, nil
}

// PickLists returns the master registry annotated with scan state.
func (s *Service) PickLists() ([]map[string]any, error) {
	entries, err := s.picks.All()
	if err != nil {
		return nil, err
	}
	records, err := s.scans.Records()
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]ledger.ScanRecord, len(records))
	for _, rec := range records {
		byCode[rec.Code] = rec
	}

	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		rec, scanned := byCode[entry.Code]
		items = append(items, map[string]any{
			"code":      entry.Code,
			"carrier":   entry.Carrier,
			"scanned":   scanned,
			"concluded": scanned && rec.Concluded(),
		})
	}
	return items, nil
}

// DeletePickLists removes codes from the master registry together with
// their scan and trouble state.
func (s *Service) DeletePickLists(codes []string, actor string) error {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			set[code] = struct{}{}
		}
	}
	if len(set) == 0 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "codes are required", nil)
	}

	if err := s.picks.Delete(set); err != nil {
		return err
	}
	if err := s.scans.BulkDelete(set); err != nil {
		return err
	}
	for code := range set {
		if err := s.troubles.Clear(code); err != nil {
			return err
		}
		if err := s.problems.Delete(code); err != nil {
			return err
		}
		s.dropFromIndex(code)
	}
	s.recordAudit(actor, fmt.Sprintf("picklist delete %d codes", len(set)))
	return nil
}

// --- Scanning ---

// SubmitScan folds one scan event into the ledgers. A clean scan is a
// bare 13-character code matching a stored entry; anything after the code
// is a trouble tail that lands on the coarse trouble ledger.
func (s *Service) SubmitScan(user, input, carrier string) (map[string]any, error) {
	input = strings.ToUpper(strings.TrimSpace(input))
	code, tail := ledger.SplitCode(input)
	if err := ledger.ValidateCode(code); err != nil {
		return nil, domainError(http.StatusUnprocessableEntity, "INVALID_CODE", err.Error(), nil)
	}

	storedCarrier, found, err := s.picks.CarrierForBase(input, code)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainError(http.StatusNotFound, "NOT_IN_PICKLIST",
			fmt.Sprintf("code %s is not in the pick list", code), nil)
	}
	carrier = strings.TrimSpace(carrier)
	if carrier != "" && carrier != storedCarrier {
		return nil, domainError(http.StatusConflict, "CARRIER_MISMATCH",
			fmt.Sprintf("code %s belongs to carrier %s", code, storedCarrier),
			map[string]any{"code": code, "carrier": storedCarrier})
	}

	good := tail == ""
	remark, effCarrier, err := s.scans.MergeScan(code, user, storedCarrier, good)
	if err != nil {
		return nil, err
	}
	if err := s.registry.UpsertUserLog(user, code, remark); err != nil {
		return nil, err
	}

	if good {
		// A clean scan supersedes the code's coarse trouble entry.
		if err := s.troubles.Clear(code); err != nil {
			return nil, err
		}
		if s.search != nil {
			s.search.DeleteTrouble(code)
		}
	} else {
		if err := s.troubles.Merge(code, tail, user, storedCarrier); err != nil {
			return nil, err
		}
		s.indexTrouble(code)
	}

	s.indexScan(code)
	s.recordAudit(user, "scan "+input)
	return map[string]any{
		"code":    code,
		"tail":    tail,
		"carrier": effCarrier,
		"remark":  remark,
		"good":    good,
	}, nil
}

// ScanRecords returns the scan ledger as report rows.
func (s *Service) ScanRecords() ([]map[string]any, error) {
	records, err := s.scans.Records()
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		items = append(items, map[string]any{
			"code":      rec.Code,
			"carrier":   rec.Carrier,
			"scanners":  rec.Scanners,
			"remark":    rec.Remark,
			"concluded": rec.Concluded(),
		})
	}
	return items, nil
}

// UnscannedReport lists stored codes no one has scanned yet.
func (s *Service) UnscannedReport() ([]map[string]any, error) {
	entries, err := s.picks.All()
	if err != nil {
		return nil, err
	}
	records, err := s.scans.Records()
	if err != nil {
		return nil, err
	}
	scanned := make(map[string]struct{}, len(records))
	for _, rec := range records {
		scanned[rec.Code] = struct{}{}
	}

	missing := make([]ledger.PickListEntry, 0)
	for _, entry := range entries {
		base := entry.Code
		if len(base) > ledger.CodeLength {
			base = base[:ledger.CodeLength]
		}
		if _, ok := scanned[base]; ok {
			continue
		}
		missing = append(missing, entry)
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Carrier != missing[j].Carrier {
			return missing[i].Carrier < missing[j].Carrier
		}
		return missing[i].Code < missing[j].Code
	})

	items := make([]map[string]any, 0, len(missing))
	for _, entry := range missing {
		items = append(items, map[string]any{"code": entry.Code, "carrier": entry.Carrier})
	}
	return items, nil
}

// UncompletedReport lists scanned codes whose pending set is still
// non-empty.
func (s *Service) UncompletedReport() ([]map[string]any, error) {
	records, err := s.scans.Records()
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0)
	for _, rec := range records {
		if rec.Concluded() {
			continue
		}
		items = append(items, map[string]any{
			"code":     rec.Code,
			"carrier":  rec.Carrier,
			"scanners": rec.Scanners,
			"remark":   rec.Remark,
		})
	}
	return items, nil
}

// UserHistory returns an operator's per-code log.
func (s *Service) UserHistory(name string) ([]map[string]any, error) {
	entries, err := s.registry.UserLog(name)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		items = append(items, map[string]any{
			"code":   entry.Code,
			"user":   entry.User,
			"remark": entry.Remark,
		})
	}
	return items, nil
}

// DeleteScans drops scan records without touching the master registry.
func (s *Service) DeleteScans(codes []string, actor string) error {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			set[code] = struct{}{}
		}
	}
	if len(set) == 0 {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "codes are required", nil)
	}
	if err := s.scans.BulkDelete(set); err != nil {
		return err
	}
	if s.search != nil {
		for code := range set {
			s.search.DeleteScan(code)
		}
	}
	s.recordAudit(actor, fmt.Sprintf("scan delete %d codes", len(set)))
	return nil
}

// --- Trouble ---

// TroubleReport joins the coarse ledger with per-code status derived
// from the fine problem rows. Codes without problem rows derive status
// from their own flag.
func (s *Service) TroubleReport() ([]map[string]any, error) {
	rows, err := s.troubles.Records()
	if err != nil {
		return nil, err
	}
	problemRows, err := s.problems.Records()
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(rows))
	for _, rec := range rows {
		flags := ledger.FlagsFor(problemRows, rec.Code)
		if len(flags) == 0 {
			flags = []ledger.Flag{rec.Flag}
		}
		status, label := ledger.DeriveStatus(flags)
		items = append(items, map[string]any{
			"code":         rec.Code,
			"comment":      rec.Comment,
			"contributors": rec.Contributors,
			"carrier":      rec.Carrier,
			"result":       rec.Result,
			"flag":         rec.Flag.Marker(),
			"status":       status.String(),
			"statusLabel":  label,
		})
	}
	return items, nil
}

// UpdateTroubleResult applies the result text to a coarse trouble row.
// Empty text reopens the code, "done" concludes it, and anything else is
// recorded as a not-found note.
func (s *Service) UpdateTroubleResult(user, code, text string) (map[string]any, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok, err := s.troubles.Get(code); err != nil {
		return nil, err
	} else if !ok {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "no trouble entry for "+code, nil)
	}

	text = strings.TrimSpace(text)
	var outcome string
	switch {
	case text == "":
		if err := s.troubles.SetResult(code, "-", ledger.FlagOpen); err != nil {
			return nil, err
		}
		if err := s.reopenScan(code); err != nil {
			return nil, err
		}
		outcome = "reopened"
	case strings.EqualFold(text, "done"):
		if err := s.troubles.SetResult(code, text, ledger.FlagDone); err != nil {
			return nil, err
		}
		if err := s.concludeScan(code); err != nil {
			return nil, err
		}
		outcome = "concluded"
	default:
		if err := s.troubles.SetResult(code, text, ledger.FlagNotFound); err != nil {
			return nil, err
		}
		outcome = "updated"
	}

	s.indexTrouble(code)
	s.recordAudit(user, "trouble result "+code)
	return map[string]any{"code": code, "outcome": outcome}, nil
}

// DeleteTrouble removes a coarse trouble row.
func (s *Service) DeleteTrouble(code, actor string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok, err := s.troubles.Get(code); err != nil {
		return err
	} else if !ok {
		return domainError(http.StatusNotFound, "NOT_FOUND", "no trouble entry for "+code, nil)
	}
	if err := s.troubles.Clear(code); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteTrouble(code)
	}
	s.recordAudit(actor, "trouble delete "+code)
	return nil
}

// --- Problems ---

var problemCategories = []ledger.Category{
	ledger.CategoryMissing,
	ledger.CategoryWrongPicked,
	ledger.CategoryTSP,
	ledger.CategoryMoreSkid,
	ledger.CategoryNoProblem,
}

// ReportProblem up-serts a fine-grained problem row. A NoProblem report
// clears the referenced category instead, or every category when none is
// referenced.
func (s *Service) ReportProblem(user string, input ProblemInput) (map[string]any, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if err := ledger.ValidateCode(code); err != nil {
		return nil, domainError(http.StatusUnprocessableEntity, "INVALID_CODE", err.Error(), nil)
	}
	category := ledger.ParseCategory(strings.TrimSpace(input.Category))
	if category == ledger.CategoryUnknown {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			"unknown category "+input.Category, nil)
	}
	referenced := ledger.ParseCategory(strings.TrimSpace(input.ReferencedCategory))

	rec := ledger.ProblemRecord{
		Code:            code,
		Category:        category,
		User:            user,
		PickerMentioned: strings.TrimSpace(input.Picker),
		Comment:         strings.TrimSpace(input.Comment),
		Location:        strings.TrimSpace(input.Location),
		SKU:             strings.TrimSpace(input.SKU),
		Quantity:        strings.TrimSpace(input.Quantity),
	}
	if err := s.problems.Merge(rec, referenced); err != nil {
		return nil, err
	}

	if s.search != nil {
		if category == ledger.CategoryNoProblem {
			if referenced == ledger.CategoryUnknown {
				for _, cat := range problemCategories {
					s.search.DeleteProblem(search.ProblemDocID(code, cat))
				}
			} else {
				s.search.DeleteProblem(search.ProblemDocID(code, referenced))
			}
		} else {
			s.indexProblem(code, category)
		}
	}
	s.recordAudit(user, fmt.Sprintf("problem %s %s", category, code))
	return map[string]any{"code": code, "category": category.String()}, nil
}

// ProblemReport returns the fine ledger with overlap tags and per-code
// status labels.
func (s *Service) ProblemReport() ([]map[string]any, error) {
	rows, err := s.problems.Records()
	if err != nil {
		return nil, err
	}
	tags := ledger.OverlapTags(rows)

	items := make([]map[string]any, 0, len(rows))
	for i, rec := range rows {
		_, label := ledger.DeriveStatus(ledger.FlagsFor(rows, rec.Code))
		items = append(items, map[string]any{
			"code":        rec.Code,
			"category":    rec.Category.String(),
			"user":        rec.User,
			"picker":      rec.PickerMentioned,
			"comment":     rec.Comment,
			"location":    rec.Location,
			"sku":         rec.SKU,
			"quantity":    rec.Quantity,
			"result":      rec.Result,
			"flag":        rec.Flag.Marker(),
			"overlap":     tags[i],
			"statusLabel": label,
		})
	}
	return items, nil
}

// UpdateProblemResult applies the result chain to one (code, category)
// row. When every row of the code is done the scan record is concluded.
func (s *Service) UpdateProblemResult(user, code, categoryName, text string) (map[string]any, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	category := ledger.ParseCategory(strings.TrimSpace(categoryName))
	if category == ledger.CategoryUnknown {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			"unknown category "+categoryName, nil)
	}
	if _, ok, err := s.problemRow(code, category); err != nil {
		return nil, err
	} else if !ok {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND",
			fmt.Sprintf("no %s entry for %s", category, code), nil)
	}

	text = strings.TrimSpace(text)
	var outcome string
	switch {
	case text == "":
		if err := s.problems.SetResult(code, category, "-", ledger.FlagOpen); err != nil {
			return nil, err
		}
		if err := s.reopenScan(code); err != nil {
			return nil, err
		}
		outcome = "reopened"
	case strings.EqualFold(text, "done"):
		if err := s.problems.SetResult(code, category, text, ledger.FlagDone); err != nil {
			return nil, err
		}
		rows, err := s.problems.Records()
		if err != nil {
			return nil, err
		}
		if status, _ := ledger.DeriveStatus(ledger.FlagsFor(rows, code)); status == ledger.StatusSolved {
			if err := s.troubles.SetResult(code, text, ledger.FlagDone); err != nil {
				return nil, err
			}
			if err := s.concludeScan(code); err != nil {
				return nil, err
			}
			s.indexTrouble(code)
		}
		outcome = "concluded"
	default:
		if err := s.problems.SetResult(code, category, text, ledger.FlagNotFound); err != nil {
			return nil, err
		}
		outcome = "updated"
	}

	s.indexProblem(code, category)
	s.recordAudit(user, fmt.Sprintf("problem result %s %s", category, code))
	return map[string]any{"code": code, "category": category.String(), "outcome": outcome}, nil
}

// DeleteProblem removes one (code, category) row.
func (s *Service) DeleteProblem(code, categoryName, actor string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	category := ledger.ParseCategory(strings.TrimSpace(categoryName))
	if category == ledger.CategoryUnknown {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR",
			"unknown category "+categoryName, nil)
	}
	if _, ok, err := s.problemRow(code, category); err != nil {
		return err
	} else if !ok {
		return domainError(http.StatusNotFound, "NOT_FOUND",
			fmt.Sprintf("no %s entry for %s", category, code), nil)
	}
	if err := s.problems.DeleteRow(code, category); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteProblem(search.ProblemDocID(code, category))
	}
	s.recordAudit(actor, fmt.Sprintf("problem delete %s %s", category, code))
	return nil
}

// --- Accounts and carriers ---

func (s *Service) Accounts() ([]string, error) {
	return s.registry.Users()
}

func (s *Service) DeleteAccount(name, actor string) (string, error) {
	removed, err := s.registry.DeleteUser(name)
	if err != nil {
		return "", domainError(http.StatusBadRequest, "DELETE_FAILED", err.Error(), nil)
	}
	s.recordAudit(actor, "account deleted: "+removed)
	return removed, nil
}

func (s *Service) SetAccountPassword(name, password, actor string) error {
	if err := s.passwords.SetPassword(name, password); err != nil {
		return domainError(http.StatusBadRequest, "PASSWORD_FAILED", err.Error(), nil)
	}
	s.recordAudit(actor, "password changed: "+name)
	return nil
}

func (s *Service) Carriers() ([]string, error) {
	return s.registry.Carriers()
}

func (s *Service) AddCarrier(name, actor string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	if err := s.registry.EnsureCarrier(name); err != nil {
		return err
	}
	s.recordAudit(actor, "carrier added: "+name)
	return nil
}

func (s *Service) DeleteCarrier(name, actor string) error {
	if err := s.registry.DeleteCarrier(name); err != nil {
		return domainError(http.StatusBadRequest, "DELETE_FAILED", err.Error(), nil)
	}
	s.recordAudit(actor, "carrier deleted: "+name)
	return nil
}

// --- Search, export, audit, backup ---

func (s *Service) Search(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

// ExportTroubleReport renders the trouble report in the requested format.
func (s *Service) ExportTroubleReport(format, carrier string) (*export.Result, error) {
	rows, err := s.troubles.Records()
	if err != nil {
		return nil, err
	}
	problemRows, err := s.problems.Records()
	if err != nil {
		return nil, err
	}

	exportRows := make([]export.TroubleRow, 0, len(rows))
	for _, rec := range rows {
		flags := ledger.FlagsFor(problemRows, rec.Code)
		if len(flags) == 0 {
			flags = []ledger.Flag{rec.Flag}
		}
		_, label := ledger.DeriveStatus(flags)
		exportRows = append(exportRows, export.TroubleRow{
			Code:         rec.Code,
			Comment:      rec.Comment,
			Contributors: rec.Contributors,
			Carrier:      rec.Carrier,
			Result:       rec.Result,
			Status:       label,
		})
	}

	result, err := s.export.Export(export.Request{
		Format:  export.Format(format),
		Title:   "Trouble Report",
		Carrier: strings.TrimSpace(carrier),
	}, exportRows)
	if err != nil {
		if strings.Contains(err.Error(), "unsupported format") {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) AuditHistory(limit int) ([]audit.CommitInfo, error) {
	if s.audit == nil {
		return nil, domainError(http.StatusServiceUnavailable, "AUDIT_DISABLED", "Audit trail not configured", nil)
	}
	return s.audit.History(limit)
}

func (s *Service) Backup(ctx context.Context, actor string) (string, error) {
	if s.backup == nil {
		return "", domainError(http.StatusServiceUnavailable, "BACKUP_DISABLED", "Backup not configured", nil)
	}
	name, err := s.backup.Snapshot(ctx, s.cfg.DataDir)
	if err != nil {
		return "", err
	}
	s.recordAudit(actor, "backup "+name)
	return name, nil
}

// --- Internal helpers ---

// concludeScan moves every pending scanner to confirmed and refreshes
// the operator logs with the new remark.
func (s *Service) concludeScan(code string) error {
	rec, found, err := s.scans.Conclude(code)
	if err != nil || !found {
		return err
	}
	for _, scanner := range rec.Scanners {
		if err := s.registry.UpsertUserLog(scanner, code, rec.Remark); err != nil {
			return err
		}
	}
	s.indexScan(code)
	return nil
}

// reopenScan rebuilds the pending set from the scanner list and
// refreshes the operator logs.
func (s *Service) reopenScan(code string) error {
	rec, found, err := s.scans.Reopen(code)
	if err != nil || !found {
		return err
	}
	for _, scanner := range rec.Scanners {
		if err := s.registry.UpsertUserLog(scanner, code, rec.Remark); err != nil {
			return err
		}
	}
	s.indexScan(code)
	return nil
}

func (s *Service) problemRow(code string, category ledger.Category) (ledger.ProblemRecord, bool, error) {
	rows, err := s.problems.Records()
	if err != nil {
		return ledger.ProblemRecord{}, false, err
	}
	for _, rec := range rows {
		if rec.Code == code && rec.Category == category {
			return rec, true, nil
		}
	}
	return ledger.ProblemRecord{}, false, nil
}

func (s *Service) recordAudit(actor, message string) {
	if s.audit == nil {
		return
	}
	if actor == "" {
		actor = registry.DefaultName
	}
	if err := s.audit.Record(actor, message); err != nil {
		log.Printf("audit: %s: %v", message, err)
	}
}

// dropFromIndex removes every search document tied to a code.
func (s *Service) dropFromIndex(code string) {
	if s.search == nil {
		return
	}
	s.search.DeleteScan(code)
	s.search.DeleteTrouble(code)
	for _, cat := range problemCategories {
		s.search.DeleteProblem(search.ProblemDocID(code, cat))
	}
}

func (s *Service) indexScan(code string) {
	if s.search == nil {
		return
	}
	rec, ok, err := s.scans.Get(code)
	if err != nil || !ok {
		return
	}
	s.search.IndexScan(search.ScanDocFor(rec))
}

func (s *Service) indexTrouble(code string) {
	if s.search == nil {
		return
	}
	rec, ok, err := s.troubles.Get(code)
	if err != nil || !ok {
		return
	}
	s.search.IndexTrouble(search.TroubleDocFor(rec))
}

func (s *Service) indexProblem(code string, category ledger.Category) {
	if s.search == nil {
		return
	}
	rec, ok, err := s.problemRow(code, category)
	if err != nil || !ok {
		return
	}
	s.search.IndexProblem(search.ProblemDocFor(rec))
}
