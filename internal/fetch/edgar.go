// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/pdiddy/filing-cloud/internal/httputil"
	"github.com/pdiddy/filing-cloud/internal/logging"
	"github.com/pdiddy/filing-cloud/pkg/types"
)

// EDGAR endpoints. Declared as vars so tests can substitute an httptest server.
var (
	tickersURL      = "https://www.sec.gov/files/company_tickers.json"
	submissionsBase = "https://data.sec.gov/submissions/"
	archivesBase    = "https://www.sec.gov/Archives/edgar/data/"
)

// Filing is one entry of a company's EDGAR filing index.
type Filing struct {
	Accession       string
	FilingDate      string
	Form            string
	PrimaryDocument string
}

// Year returns the calendar year of the filing date, or 0 if unparseable.
func (f Filing) Year() int {
	if len(f.FilingDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(f.FilingDate[:4])
	if err != nil {
		return 0
	}
	return y
}

type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// filingColumns is the columnar layout EDGAR uses both for filings.recent
// and for each paginated history file.
type filingColumns struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

func (c filingColumns) rows() []Filing {
	n := len(c.AccessionNumber)
	for _, col := range [][]string{c.FilingDate, c.Form, c.PrimaryDocument} {
		if len(col) < n {
			n = len(col)
		}
	}
	out := make([]Filing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Filing{
			Accession:       c.AccessionNumber[i],
			FilingDate:      c.FilingDate[i],
			Form:            c.Form[i],
			PrimaryDocument: c.PrimaryDocument[i],
		})
	}
	return out
}

type submissions struct {
	Filings struct {
		Recent filingColumns `json:"recent"`
		Files  []struct {
			Name string `json:"name"`
		} `json:"files"`
	} `json:"filings"`
}

// company is the resolved filing index for one ticker.
type company struct {
	CIK     int64
	Filings []Filing
}

// EdgarSource retrieves filings from SEC EDGAR. The ticker map and each
// company's filing index are fetched once and shared by concurrent callers.
type EdgarSource struct {
	client  *http.Client
	cfg     types.FetchConfig
	limiter *rate.Limiter
	logger  *log.Logger

	group singleflight.Group

	mu        sync.Mutex
	tickers   map[string]int64
	companies map[string]*company
}

// NewEdgarSource creates an EDGAR source. A zero RequestsPerSecond leaves
// requests unthrottled.
func NewEdgarSource(client *http.Client, cfg types.FetchConfig, logger *log.Logger) *EdgarSource {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Form == "" {
		cfg.Form = "10-K"
	}
	return &EdgarSource{
		client:    client,
		cfg:       cfg,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logging.OrDiscard(logger),
		companies: make(map[string]*company),
	}
}

// FetchYear downloads every filing of the configured form filed in year,
// converts it to text and writes it to dir as <year>_<accession>_cleaned.txt.
// Files already on disk are not downloaded again. The returned paths include
// both fresh and existing files.
func (s *EdgarSource) FetchYear(ctx context.Context, symbol string, year int, dir string) ([]string, error) {
	co, err := s.company(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	var paths []string
	for _, f := range co.Filings {
		if !strings.EqualFold(f.Form, s.cfg.Form) || f.Year() != year {
			continue
		}
		dest := filepath.Join(dir, fmt.Sprintf("%d_%s_cleaned.txt", year, f.Accession))
		if _, err := os.Stat(dest); err == nil {
			s.logger.Debug("filing already on disk", "path", dest)
			paths = append(paths, dest)
			continue
		}

		url := fmt.Sprintf("%s%d/%s/%s", archivesBase, co.CIK, strings.ReplaceAll(f.Accession, "-", ""), f.PrimaryDocument)
		body, err := s.get(ctx, url)
		if err != nil {
			return paths, fmt.Errorf("downloading %s %s: %w", s.cfg.Form, f.Accession, err)
		}

		text := string(body)
		if IsHTML(f.PrimaryDocument, body) {
			text, err = HTMLToText(strings.NewReader(text))
			if err != nil {
				return paths, fmt.Errorf("converting %s: %w", f.Accession, err)
			}
		}
		if err := writeFileAtomic(dest, []byte(text)); err != nil {
			return paths, err
		}
		s.logger.Info("fetched filing", "symbol", symbol, "year", year, "accession", f.Accession, "bytes", len(text))
		paths = append(paths, dest)
	}

	if len(paths) == 0 {
		s.logger.Info("no filings for year", "symbol", symbol, "year", year, "form", s.cfg.Form)
	}
	return paths, nil
}

// Filings returns the full filing index for symbol.
func (s *EdgarSource) Filings(ctx context.Context, symbol string) ([]Filing, error) {
	co, err := s.company(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return co.Filings, nil
}

func (s *EdgarSource) company(ctx context.Context, symbol string) (*company, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	co, ok := s.companies[key]
	s.mu.Unlock()
	if ok {
		return co, nil
	}

	v, err, _ := s.group.Do("company:"+key, func() (any, error) {
		s.mu.Lock()
		co, ok := s.companies[key]
		s.mu.Unlock()
		if ok {
			return co, nil
		}

		cik, err := s.lookupCIK(ctx, key)
		if err != nil {
			return nil, err
		}
		filings, err := s.loadFilings(ctx, cik)
		if err != nil {
			return nil, err
		}
		co = &company{CIK: cik, Filings: filings}
		s.mu.Lock()
		s.companies[key] = co
		s.mu.Unlock()
		return co, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*company), nil
}

func (s *EdgarSource) lookupCIK(ctx context.Context, ticker string) (int64, error) {
	s.mu.Lock()
	tickers := s.tickers
	s.mu.Unlock()

	if tickers == nil {
		v, err, _ := s.group.Do("tickers", func() (any, error) {
			s.mu.Lock()
			cached := s.tickers
			s.mu.Unlock()
			if cached != nil {
				return cached, nil
			}

			body, err := s.get(ctx, tickersURL)
			if err != nil {
				return nil, fmt.Errorf("fetching ticker map: %w", err)
			}
			var raw map[string]tickerEntry
			if err := json.Unmarshal(body, &raw); err != nil {
				return nil, fmt.Errorf("parsing ticker map: %w", err)
			}
			m := make(map[string]int64, len(raw))
			for _, e := range raw {
				m[strings.ToUpper(e.Ticker)] = e.CIK
			}
			s.mu.Lock()
			s.tickers = m
			s.mu.Unlock()
			return m, nil
		})
		if err != nil {
			return 0, err
		}
		tickers = v.(map[string]int64)
	}

	cik, ok := tickers[ticker]
	if !ok {
		return 0, fmt.Errorf("unknown ticker %q", ticker)
	}
	return cik, nil
}

func (s *EdgarSource) loadFilings(ctx context.Context, cik int64) ([]Filing, error) {
	body, err := s.get(ctx, fmt.Sprintf("%sCIK%010d.json", submissionsBase, cik))
	if err != nil {
		return nil, fmt.Errorf("fetching filing index for CIK %d: %w", cik, err)
	}
	var sub submissions
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("parsing filing index for CIK %d: %w", cik, err)
	}

	filings := sub.Filings.Recent.rows()
	for _, page := range sub.Filings.Files {
		body, err := s.get(ctx, submissionsBase+page.Name)
		if err != nil {
			return nil, fmt.Errorf("fetching filing history %s: %w", page.Name, err)
		}
		var cols filingColumns
		if err := json.Unmarshal(body, &cols); err != nil {
			return nil, fmt.Errorf("parsing filing history %s: %w", page.Name, err)
		}
		filings = append(filings, cols.rows()...)
	}
	s.logger.Debug("loaded filing index", "cik", cik, "filings", len(filings))
	return filings, nil
}

func (s *EdgarSource) get(ctx context.Context, url string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0, s.logger)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// writeFileAtomic writes data to a temp file in the destination directory
// and renames it into place.
func writeFileAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", dest, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
