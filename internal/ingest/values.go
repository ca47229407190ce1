package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"heli-training/logbook/internal/models"
)

var (
	errEmptyValue  = errors.New("value is empty")
	dayFirstDate   = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})$`)
	isoDate        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	hoursAndMins   = regexp.MustCompile(`^(\d+):([0-5]\d)$`)
	serialEpoch    = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	localDateTimes = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04"}
)

// maxSerialDay is 9999-12-31 as a spreadsheet serial day.
const maxSerialDay = 2958465

// stringValue renders a decoded JSON cell as trimmed text. Numbers keep their
// shortest form, so a grade of 8 stays "8" and 7.5 stays "7.5".
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// parseDate accepts DD/MM/YYYY, ISO dates, timestamps and spreadsheet serial days.
// Timestamps are moved into loc before the day is taken: the sheet exports
// local midnight as the previous day's evening in UTC.
func parseDate(v interface{}, loc *time.Location) (models.Date, error) {
	switch val := v.(type) {
	case nil:
		return models.Date{}, errEmptyValue
	case time.Time:
		return models.DateOf(val.In(loc)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return models.Date{}, fmt.Errorf("invalid serial day %q: %w", val, err)
		}
		return serialDate(f)
	case float64:
		return serialDate(val)
	case int:
		return serialDate(float64(val))
	case string:
		return parseDateString(strings.TrimSpace(val), loc)
	default:
		return models.Date{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func parseDateString(s string, loc *time.Location) (models.Date, error) {
	if s == "" {
		return models.Date{}, errEmptyValue
	}

	if m := dayFirstDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return calendarDate(year, month, day)
	}

	if isoDate.MatchString(s) {
		return models.ParseISODate(s)
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t.In(loc)), nil
		}
	}
	for _, layout := range localDateTimes {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return models.DateOf(t), nil
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialDate(f)
	}

	return models.Date{}, fmt.Errorf("unrecognised date %q", s)
}

// calendarDate rejects days that time.Date would silently roll over, like 31/02.
func calendarDate(year, month, day int) (models.Date, error) {
	if month < 1 || month > 12 || day < 1 {
		return models.Date{}, fmt.Errorf("invalid date %02d/%02d/%04d", day, month, year)
	}
	d := models.NewDate(year, time.Month(month), day)
	t := d.Time()
	if t.Day() != day || int(t.Month()) != month {
		return models.Date{}, fmt.Errorf("invalid date %02d/%02d/%04d", day, month, year)
	}
	return d, nil
}

func serialDate(f float64) (models.Date, error) {
	if math.IsNaN(f) || f < 1 || f > maxSerialDay {
		return models.Date{}, fmt.Errorf("serial day %v out of range", f)
	}
	return models.DateOf(serialEpoch.AddDate(0, 0, int(math.Floor(f)))), nil
}

// parseMinutes converts decimal hours ("1.5", "1,5", 1.5) or "H:MM" into
// whole minutes. Unparseable values are reported with ok=false.
func parseMinutes(v interface{}) (int, bool) {
	var hours float64
	switch val := v.(type) {
	case nil:
		return 0, true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		hours = f
	case float64:
		hours = val
	case int:
		hours = float64(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, true
		}
		if m := hoursAndMins.FindStringSubmatch(s); m != nil {
			h, _ := strconv.Atoi(m[1])
			mins, _ := strconv.Atoi(m[2])
			return h*60 + mins, true
		}
		f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		hours = f
	default:
		return 0, false
	}

	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0, false
	}
	minutes := int(math.Round(hours * 60))
	if minutes < 0 {
		minutes = 0
	}
	return minutes, true
}

// FormatHours renders minutes as decimal hours with at most two decimals.
func FormatHours(minutes int) string {
	hours := math.Round(float64(minutes)/60*100) / 100
	return strconv.FormatFloat(hours, 'f', -1, 64)
}
