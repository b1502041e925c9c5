package ingester

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nepremicnine-backend/internal/repository"
)

// EnergetskaService ingests the public energy-certificate register: a
// monthly pipe-delimited CSV that replaces the core table wholesale.
type EnergetskaService struct {
	repo    *repository.Repository
	client  *http.Client
	baseURL string
	now     func() time.Time
}

func NewEnergetskaService(repo *repository.Repository, baseURL string) *EnergetskaService {
	return &EnergetskaService{
		repo:    repo,
		client:  &http.Client{Timeout: 10 * time.Minute},
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// sloMonths are the filename month abbreviations the portal publishes
// under.
var sloMonths = [12]string{
	"jan", "feb", "mar", "apr", "maj", "jun",
	"jul", "avg", "sep", "okt", "nov", "dec",
}

// CurrentRegisterURL synthesizes the download URL for the current month,
// e.g. ei_javni_register_avg25.csv in August 2025.
func (s *EnergetskaService) CurrentRegisterURL() string {
	now := s.now()
	month := sloMonths[now.Month()-1]
	year := fmt.Sprintf("%02d", now.Year()%100)
	return fmt.Sprintf("%s/ei_javni_register_%s%s.csv", s.baseURL, month, year)
}

// RunIngestion downloads, cleans and loads the certificate register. An
// empty url means "the current month's file".
func (s *EnergetskaService) RunIngestion(ctx context.Context, url string) error {
	if url == "" {
		url = s.CurrentRegisterURL()
	}
	log.Printf("[ei] downloading register from %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("certificate download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: certificate download status %d", ErrRemoteFormat, resp.StatusCode)
	}

	rows, err := parseEICSV(resp.Body)
	if err != nil {
		return err
	}
	log.Printf("[ei] parsed %d cleaned certificate rows", len(rows))

	staged, err := s.repo.StageEnergetskeIzkaznice(ctx, rows)
	if err != nil {
		return fmt.Errorf("stage certificates: %w", err)
	}
	if staged == 0 {
		return fmt.Errorf("%w: register file carried no usable rows", ErrRemoteFormat)
	}

	replaced, err := s.repo.ReplaceEnergetskeIzkaznice(ctx)
	if err != nil {
		return err
	}
	log.Printf("[ei] replaced core register: %d certificates", replaced)
	return nil
}

// eiHeaderMap maps the portal's CSV headers onto staging column names,
// in eiStagingColumns order.
var eiHeaderMap = map[string]string{
	"ID energetske izkaznice":               "ei_id",
	"Datum izdelave":                        "datum_izdelave",
	"Velja do":                              "velja_do",
	"Šifra KO":                              "sifra_ko",
	"Številka stavbe":                       "stevilka_stavbe",
	"Številka dela stavbe":                  "stevilka_dela_stavbe",
	"Tip izkaznice":                         "tip_izkaznice",
	"Potrebna toplota za ogrevanje":         "potrebna_toplota_ogrevanje",
	"Dovedena energija za delovanje stavbe": "dovedena_energija_delovanje",
	"Celotna energija":                      "celotna_energija",
	"Dovedena električna energija":          "dovedena_elektricna_energija",
	"Primarna energija":                     "primarna_energija",
	"Emisije CO2":                           "emisije_co2",
	"Kondicionirana površina stavbe":        "kondicionirana_povrsina",
	"Energijski razred":                     "energijski_razred",
	"EPBD":                                  "epbd_tip",
}

// parseEICSV reads the pipe-delimited register and produces cleaned rows
// in repository staging order: ids trimmed, numbers de-localized, dates
// parsed, rows without an id dropped, duplicate ids collapsed keeping the
// last occurrence.
func parseEICSV(r io.Reader) ([][]any, error) {
	rd := csv.NewReader(r)
	rd.Comma = '|'
	rd.FieldsPerRecord = -1

	header, err := rd.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read certificate header: %v", ErrRemoteFormat, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	// position[i] is the CSV field index feeding staging column i.
	position := make([]int, len(eiStagingOrder))
	for i := range position {
		position[i] = -1
	}
	for fieldIdx, h := range header {
		col, ok := eiHeaderMap[strings.TrimSpace(h)]
		if !ok {
			continue
		}
		for i, name := range eiStagingOrder {
			if name == col {
				position[i] = fieldIdx
			}
		}
	}
	if position[0] == -1 {
		return nil, fmt.Errorf("%w: certificate id column missing", ErrRemoteFormat)
	}

	var order []string
	lastByID := make(map[string][]any)
	for {
		record, err := rd.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: read certificate row: %v", ErrRemoteFormat, err)
		}

		row := make([]any, len(eiStagingOrder))
		for i, pos := range position {
			if pos < 0 || pos >= len(record) {
				continue
			}
			row[i] = cleanEIValue(eiStagingOrder[i], record[pos])
		}

		id, _ := row[0].(string)
		if id == "" {
			continue
		}
		if _, seen := lastByID[id]; !seen {
			order = append(order, id)
		}
		lastByID[id] = row
	}

	rows := make([][]any, 0, len(order))
	for _, id := range order {
		rows = append(rows, lastByID[id])
	}
	return rows, nil
}

// eiStagingOrder mirrors the repository's staging column order.
var eiStagingOrder = []string{
	"ei_id", "datum_izdelave", "velja_do", "sifra_ko", "stevilka_stavbe",
	"stevilka_dela_stavbe", "tip_izkaznice", "potrebna_toplota_ogrevanje",
	"dovedena_energija_delovanje", "celotna_energija",
	"dovedena_elektricna_energija", "primarna_energija", "emisije_co2",
	"kondicionirana_povrsina", "energijski_razred", "epbd_tip",
}

// cleanEIValue converts one raw CSV cell to its staging representation.
// Invalid numbers and dates become nil, matching the register's own
// sloppy formatting.
func cleanEIValue(column, raw string) any {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	switch column {
	case "datum_izdelave", "velja_do":
		t, err := time.Parse("02.01.2006", v)
		if err != nil {
			return nil
		}
		return t
	case "sifra_ko", "stevilka_stavbe", "stevilka_dela_stavbe":
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil
		}
		return n
	case "potrebna_toplota_ogrevanje", "dovedena_energija_delovanje",
		"celotna_energija", "dovedena_elektricna_energija",
		"primarna_energija", "emisije_co2", "kondicionirana_povrsina":
		return parseEINumber(v)
	default:
		return v
	}
}

// parseEINumber handles the register's Slovenian number formatting:
// optional thousands dots and a decimal comma ("1.234,56" -> 1234.56).
func parseEINumber(v string) any {
	v = strings.ReplaceAll(v, ".", "")
	v = strings.ReplaceAll(v, ",", ".")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return f
}
