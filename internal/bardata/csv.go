// FILE: csv.go
// CSV loader for bar data: reads time|timestamp, open, high, low, close,
// volume and an optional symbol column. Time accepts RFC3339 or Unix
// seconds. Headers are matched case-insensitively; unknown columns are
// ignored. Rows missing a required field are reported as a DataError rather
// than silently dropped.
package bardata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chidi150c/backtestlab/internal/xerrors"
)

// LoadCSV reads a generic OHLCV CSV at path and returns bars sorted ascending
// by time. When the file carries a "symbol" column, rows are merged into one
// ascending stream covering every symbol present, per the heterogeneous-
// symbol acceptance rule of the data source contract.
func LoadCSV(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parseCSV(f, path)
}

func parseCSV(r io.Reader, path string) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []Bar
	var headers []string
	rowIdx := 0

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if rowIdx == 0 {
			headers = rec
			rowIdx++
			continue
		}
		row := map[string]string{}
		for j, h := range headers {
			k := strings.ToLower(strings.TrimSpace(h))
			if j < len(rec) {
				row[k] = strings.TrimSpace(rec[j])
			}
		}
		rowIdx++

		ts := first(row, "time", "timestamp")
		op := first(row, "open")
		hp := first(row, "high")
		lp := first(row, "low")
		cp := first(row, "close")
		vp := first(row, "volume", "vol")
		sym := first(row, "symbol", "product", "ticker")

		if ts == "" || op == "" || hp == "" || lp == "" || cp == "" {
			return nil, xerrors.DataError(
				fmt.Sprintf("%s: row %d missing required OHLC field", path, rowIdx), time.Time{})
		}

		tt, err := parseTimeFlexible(ts)
		if err != nil {
			return nil, xerrors.DataError(fmt.Sprintf("%s: row %d: %v", path, rowIdx, err), time.Time{})
		}
		o, errO := strconv.ParseFloat(op, 64)
		h, errH := strconv.ParseFloat(hp, 64)
		l, errL := strconv.ParseFloat(lp, 64)
		c, errC := strconv.ParseFloat(cp, 64)
		v := 0.0
		if vp != "" {
			v, _ = strconv.ParseFloat(vp, 64)
		}
		if errO != nil || errH != nil || errL != nil || errC != nil {
			return nil, xerrors.DataError(fmt.Sprintf("%s: row %d: non-numeric OHLC", path, rowIdx), tt)
		}
		if o < 0 || h < 0 || l < 0 || c < 0 || v < 0 {
			return nil, xerrors.DataError(fmt.Sprintf("%s: row %d: negative price/volume", path, rowIdx), tt)
		}
		out = append(out, Bar{
			Time: tt, Symbol: sym, Open: o, High: h, Low: l, Close: c, Volume: v,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// parseTimeFlexible supports RFC3339 or Unix seconds.
func parseTimeFlexible(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad time: %s", s)
}

// first returns the first non-empty value for keys in m.
func first(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
