package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
	"github.com/cypherlabdev/parlay-engine-service/pkg/parlay"
)

// EventTimeLayout is the event_time column format
const EventTimeLayout = "2006-01-02 15:04:05"

var csvHeader = []string{"event_time", "bookmaker", "Fighter", "Opponent", "odds_f1", "odds_f2"}

var requiredColumns = []string{"Fighter", "Opponent", "odds_f1", "odds_f2"}

// ParseOddsCSV reads fights from a CSV with a header row.
// Rows with a missing name or unparsable odds are skipped, and an unparsable
// event_time is left zero; both are logged at Debug.
func ParseOddsCSV(r io.Reader, logger zerolog.Logger) ([]models.Fight, error) {
	logger = logger.With().Str("component", "odds_csv").Logger()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("odds csv is empty")
	} else if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("odds csv is missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var fights []models.Fight
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		fight := models.Fight{
			Fighter:   field(record, "Fighter"),
			Opponent:  field(record, "Opponent"),
			Bookmaker: field(record, "bookmaker"),
		}
		if fight.Fighter == "" || fight.Opponent == "" {
			logger.Debug().Int("row", row).Msg("skipping row without both fighter names")
			continue
		}
		if fight.FighterOdds, err = parseOdds(field(record, "odds_f1")); err != nil {
			logger.Debug().Err(err).Int("row", row).Str("column", "odds_f1").Msg("skipping row with bad odds")
			continue
		}
		if fight.OpponentOdds, err = parseOdds(field(record, "odds_f2")); err != nil {
			logger.Debug().Err(err).Int("row", row).Str("column", "odds_f2").Msg("skipping row with bad odds")
			continue
		}
		if ts := field(record, "event_time"); ts != "" {
			if fight.EventTime, err = parseEventTime(ts); err != nil {
				logger.Debug().Err(err).Int("row", row).Str("event_time", ts).Msg("ignoring unparsable event_time")
			}
		}
		fights = append(fights, fight)
	}

	return fights, nil
}

// WriteOddsCSV writes fights in the layout ParseOddsCSV reads
func WriteOddsCSV(w io.Writer, fights []models.Fight) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, f := range fights {
		eventTime := ""
		if !f.EventTime.IsZero() {
			eventTime = f.EventTime.UTC().Format(EventTimeLayout)
		}
		record := []string{
			eventTime,
			f.Bookmaker,
			f.Fighter,
			f.Opponent,
			strconv.Itoa(f.FighterOdds),
			strconv.Itoa(f.OpponentOdds),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// parseOdds accepts "+150", "-200" and "150.0"
func parseOdds(s string) (int, error) {
	s = strings.TrimPrefix(s, "+")
	if n, err := strconv.Atoi(s); err == nil {
		return n, parlay.ValidateOdds(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid odds %q", s)
	}
	return int(f), parlay.ValidateOdds(int(f))
}

func parseEventTime(s string) (time.Time, error) {
	if t, err := time.Parse(EventTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
