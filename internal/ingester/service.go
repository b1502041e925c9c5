package ingester

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"nepremicnine-backend/internal/models"
	"nepremicnine-backend/internal/repository"
)

// Upstream failure modes. The run fails with status "error" and nothing
// is committed; the next scheduled pass retries.
var (
	// ErrRemoteFormat means the register metadata endpoint answered with
	// something other than the expected {"url": "..."} object.
	ErrRemoteFormat = errors.New("unexpected register metadata response")

	// ErrBadArchive means the downloaded file is not a readable zip.
	ErrBadArchive = errors.New("downloaded archive is not a valid zip")

	// ErrMissingFile means the archive does not carry all expected CSVs.
	ErrMissingFile = errors.New("expected csv missing from archive")
)

// browserUserAgent is required by the register download endpoint, which
// rejects non-browser clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Service drives the yearly register ingestion pipeline:
// download -> extract -> stage -> transform -> cleanup.
type Service struct {
	repo   *repository.Repository
	client *http.Client
}

func NewService(repo *repository.Repository) *Service {
	return &Service{
		repo: repo,
		client: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// RunIngestion replaces the core partition for one (dataset, year). Every
// stage error aborts the run; the previous partition survives because the
// transform transaction never committed.
func (s *Service) RunIngestion(ctx context.Context, ds models.Dataset, year int) error {
	log.Printf("[ingest] %s %d: starting", ds.Code, year)

	tempDir, err := os.MkdirTemp("", fmt.Sprintf("gurs-%s-%d-", ds.Code, year))
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			log.Printf("[ingest] %s %d: temp cleanup failed: %v", ds.Code, year, err)
		}
	}()

	zipPath, err := s.download(ctx, ds, year, tempDir)
	if err != nil {
		return err
	}

	csvFiles, err := extractArchive(zipPath, ds)
	if err != nil {
		return err
	}

	if err := s.stage(ctx, ds, year, csvFiles); err != nil {
		return err
	}

	if err := s.verifyStaged(ctx, ds, year); err != nil {
		return err
	}

	orphans, err := s.repo.CountStagedOrphans(ctx, ds)
	if err != nil {
		log.Printf("[ingest] %s %d: orphan audit failed: %v", ds.Code, year, err)
	} else if orphans > 0 {
		sample, _ := s.repo.StagedOrphanSample(ctx, ds, 5)
		log.Printf("[ingest] %s %d: %d staged building parts have no deal and will be dropped (e.g. %s)",
			ds.Code, year, orphans, strings.Join(sample, ", "))
	}

	poselCount, delCount, err := s.repo.TransformYear(ctx, ds, year)
	if err != nil {
		return fmt.Errorf("transform %s %d: %w", ds.Code, year, err)
	}
	log.Printf("[ingest] %s %d: transformed %d deals, %d building parts", ds.Code, year, poselCount, delCount)

	return nil
}

// verifyStaged refuses to transform from an empty staging dump; running
// the transform would silently erase the year's core partition. For
// rentals the dwelling share is logged as a register-quality signal.
func (s *Service) verifyStaged(ctx context.Context, ds models.Dataset, year int) error {
	for _, table := range []string{ds.Code + "_posel", ds.Code + "_del_stavbe"} {
		n, err := s.repo.StagingCount(ctx, table)
		if err != nil {
			return fmt.Errorf("count staging.%s: %w", table, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: staging.%s is empty for %s %d", ErrRemoteFormat, table, ds.Code, year)
		}
	}

	if ds.IsRental() {
		total, err := s.repo.StagingCount(ctx, "np_del_stavbe")
		if err != nil {
			return err
		}
		residential, err := s.repo.CountStagedResidential(ctx)
		if err != nil {
			log.Printf("[ingest] %s %d: dwelling-share audit failed: %v", ds.Code, year, err)
		} else if total > 0 {
			log.Printf("[ingest] %s %d: %d of %d staged parts are dwellings (%.1f%%)",
				ds.Code, year, residential, total, 100*float64(residential)/float64(total))
		}
	}
	return nil
}

// download resolves the archive URL from the register metadata endpoint
// and streams the zip into tempDir.
func (s *Service) download(ctx context.Context, ds models.Dataset, year int, tempDir string) (string, error) {
	metaURL := ds.MetadataURL + "?" + url.Values{
		"filterParam": {"DRZAVA"},
		"filterValue": {"1"},
		"filterYear":  {strconv.Itoa(year)},
	}.Encode()

	var meta struct {
		URL string `json:"url"`
	}
	if err := s.getJSON(ctx, metaURL, &meta); err != nil {
		return "", err
	}
	if meta.URL == "" {
		return "", fmt.Errorf("%w: no url field for %s %d", ErrRemoteFormat, ds.Code, year)
	}

	zipPath := filepath.Join(tempDir, fmt.Sprintf("%s_%d.zip", ds.Code, year))
	size, err := s.downloadFile(ctx, meta.URL, zipPath)
	if err != nil {
		return "", err
	}
	log.Printf("[ingest] %s %d: downloaded %d bytes", ds.Code, year, size)

	// Verify before extracting so a truncated download fails loudly.
	if rd, err := zip.OpenReader(zipPath); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadArchive, err)
	} else {
		rd.Close()
	}
	return zipPath, nil
}

func (s *Service) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("register metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRemoteFormat, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteFormat, err)
	}
	return nil
}

func (s *Service) downloadFile(ctx context.Context, rawURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("archive download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("archive download: status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("archive download: %w", err)
	}
	return n, nil
}

// extractArchive unpacks the zip next to itself and maps the contained
// CSVs onto staging table names by filename substring.
func extractArchive(zipPath string, ds models.Dataset) (map[string]string, error) {
	extractDir := filepath.Dir(zipPath)

	rd, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer rd.Close()

	mapping := map[string]string{
		"sifranti":              "",
		ds.Code + "_posel":      "",
		ds.Code + "_del_stavbe": "",
	}

	for _, f := range rd.File {
		name := strings.ToLower(f.Name)
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		var table string
		switch {
		case strings.Contains(name, "sifranti"):
			table = "sifranti"
		case strings.Contains(name, "posli"):
			table = ds.Code + "_posel"
		case strings.Contains(name, "delistavb"):
			table = ds.Code + "_del_stavbe"
		default:
			continue
		}

		dest := filepath.Join(extractDir, filepath.Base(f.Name))
		if err := extractFile(f, dest); err != nil {
			return nil, err
		}
		mapping[table] = dest
	}

	for table, path := range mapping {
		if path == "" {
			return nil, fmt.Errorf("%w: no csv for %s in %s", ErrMissingFile, table, filepath.Base(zipPath))
		}
	}
	return mapping, nil
}

func extractFile(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s in archive: %w", f.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}

// stage truncates the dataset's staging tables and bulk-loads the
// extracted CSVs. Unknown CSV columns are dropped so upstream additions
// do not break the load.
func (s *Service) stage(ctx context.Context, ds models.Dataset, year int, csvFiles map[string]string) error {
	tables := []string{"sifranti", ds.Code + "_posel", ds.Code + "_del_stavbe"}

	qualified := make([]string, len(tables))
	for i, t := range tables {
		qualified[i] = "staging." + t
	}
	if err := s.repo.TruncateStaging(ctx, qualified...); err != nil {
		return err
	}

	for _, table := range tables {
		columns, rows, err := readStagingCSV(csvFiles[table], table)
		if err != nil {
			return fmt.Errorf("read %s csv: %w", table, err)
		}
		n, err := s.repo.CopyStaging(ctx, table, columns, rows)
		if err != nil {
			return err
		}
		log.Printf("[ingest] %s %d: staged %d rows into staging.%s", ds.Code, year, n, table)
	}
	return nil
}
