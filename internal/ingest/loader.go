package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"volsim/internal/infrastructure"
	"volsim/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrMissingColumn = errors.New("ingest: missing required column")
	ErrNoRows        = errors.New("ingest: no parseable rows in input")
)

// requiredColumns is the WRDS TAQ quote export layout. Header matching is
// case-insensitive.
var requiredColumns = []string{"date", "time_m", "bid", "bidsiz", "ask", "asksiz"}

const timestampLayout = "20060102 15:04:05.999999999"

// Loader reads raw TAQ quote files row by row, so multi-million-row inputs
// never need a second in-memory copy of the text.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

func (l *Loader) LoadFile(path string) ([]model.Quote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()
	return l.Load(f)
}

// Load parses quote records from r. Malformed rows are dropped, not fatal;
// a file yielding zero rows is a fatal input error.
func (l *Loader) Load(r io.Reader) ([]model.Quote, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var (
		quotes  []model.Quote
		dropped int
	)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			infrastructure.RowsUnparseable.Inc()
			continue
		}
		q, ok := parseRecord(record, idx)
		if !ok {
			dropped++
			infrastructure.RowsUnparseable.Inc()
			continue
		}
		quotes = append(quotes, q)
	}

	if len(quotes) == 0 {
		return nil, ErrNoRows
	}

	l.logger.Info("loaded quote file",
		zap.Int("rows", len(quotes)),
		zap.Int("dropped", dropped),
	)
	return quotes, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return idx, nil
}

func parseRecord(record []string, idx map[string]int) (model.Quote, bool) {
	field := func(col string) (string, bool) {
		i := idx[col]
		if i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	date, ok1 := field("date")
	tod, ok2 := field("time_m")
	if !ok1 || !ok2 {
		return model.Quote{}, false
	}
	ts, err := time.Parse(timestampLayout, date+" "+tod)
	if err != nil {
		return model.Quote{}, false
	}

	bidStr, ok1 := field("bid")
	askStr, ok2 := field("ask")
	if !ok1 || !ok2 {
		return model.Quote{}, false
	}
	bid, err := decimal.NewFromString(bidStr)
	if err != nil {
		return model.Quote{}, false
	}
	ask, err := decimal.NewFromString(askStr)
	if err != nil {
		return model.Quote{}, false
	}

	// Sizes are optional per row; a blank size parses as zero.
	var bidSize, askSize int64
	if s, ok := field("bidsiz"); ok && s != "" {
		if bidSize, err = strconv.ParseInt(s, 10, 64); err != nil {
			return model.Quote{}, false
		}
	}
	if s, ok := field("asksiz"); ok && s != "" {
		if askSize, err = strconv.ParseInt(s, 10, 64); err != nil {
			return model.Quote{}, false
		}
	}

	return model.Quote{
		Timestamp: ts,
		Bid:       bid,
		Ask:       ask,
		BidSize:   bidSize,
		AskSize:   askSize,
	}, true
}
