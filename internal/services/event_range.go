package services

import (
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

var (
	ErrRangeFromInvalid = invalidOperation("invalid from: expected YYYY-MM-DD")
	ErrRangeToInvalid   = invalidOperation("invalid to: expected YYYY-MM-DD")
	ErrRangeInverted    = invalidOperation("range end must not be before range start")
)

// ParseEventRange turns optional YYYY-MM-DD bounds into a half-open instant
// range: from is the local midnight of the first day, to the midnight after
// the last day. An empty bound stays nil.
func ParseEventRange(rawFrom string, rawTo string, location *time.Location) (*time.Time, *time.Time, error) {
	fromRaw := strings.TrimSpace(rawFrom)
	toRaw := strings.TrimSpace(rawTo)

	var from *time.Time
	if fromRaw != "" {
		parsedFrom, err := time.ParseInLocation(dayLayout, fromRaw, location)
		if err != nil {
			return nil, nil, ErrRangeFromInvalid
		}
		start, _ := DayRange(parsedFrom, location)
		from = &start
	}

	var to *time.Time
	if toRaw != "" {
		parsedTo, err := time.ParseInLocation(dayLayout, toRaw, location)
		if err != nil {
			return nil, nil, ErrRangeToInvalid
		}
		_, end := DayRange(parsedTo, location)
		to = &end
	}

	if from != nil && to != nil && !to.After(*from) {
		return nil, nil, ErrRangeInverted
	}

	return from, to, nil
}
