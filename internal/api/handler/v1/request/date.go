package request

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Event dates are accepted as a plain day or with a time of day, in UTC
// unless the value carries an offset.
var dateParser = &now.Config{
	TimeLocation: time.UTC,
	TimeFormats: []string{
		"2006-01-02",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"02/01/2006",
	},
}

func parseDate(field, value string) (time.Time, error) {
	t, err := dateParser.Parse(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date %q", field, value)
	}

	return t, nil
}
