package postal

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-geo/internal/geo"
)

// ReadCSV parses zip,city,state[,lat,lng] rows. A header row is detected and
// skipped. Rows with too few fields or a blank code are skipped with a warning;
// coordinates that fail to parse are dropped but the row is kept.
func ReadCSV(ctx context.Context, r io.Reader) ([]Place, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		places  []Place
		line    int
		skipped int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "postal: read csv")
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "postal: read csv line %d", line+1)
		}
		line++

		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if line == 1 && isHeader(record) {
			continue
		}
		if len(record) < 3 || record[0] == "" {
			skipped++
			continue
		}

		p := Place{PostalCode: record[0], City: record[1], State: strings.ToUpper(record[2])}
		if len(record) >= 5 {
			if pt, err := geo.ParsePoint(record[3], record[4]); err == nil {
				p.Location = &pt
			}
		}
		places = append(places, p)
	}

	if skipped > 0 {
		zap.L().Warn("postal: skipped malformed csv rows", zap.Int("skipped", skipped))
	}
	return places, nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	switch strings.ToLower(record[0]) {
	case "zip", "zipcode", "zip_code", "postal_code", "postcode":
		return true
	}
	return false
}
