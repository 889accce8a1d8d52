package printtmpl

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Built-in formatter names
const (
	FormatDate       = "date"
	FormatDateTime   = "datetime"
	FormatCurrency   = "currency"
	FormatNumber     = "number"
	FormatUppercase  = "uppercase"
	FormatLowercase  = "lowercase"
	FormatCapitalize = "capitalize"
	FormatNone       = "none"
)

// Output layouts for the date formatters
const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
)

// FormatOptions carries the locale settings used by the built-in formatters.
type FormatOptions struct {
	Locale         language.Tag
	Location       *time.Location
	CurrencySymbol string
	CurrencyPrefix bool
}

// DefaultFormatOptions returns Italian formatting with euro amounts and
// dates shown in Europe/Rome.
func DefaultFormatOptions() FormatOptions {
	return FormatOptionsFromConfig(DefaultConfig())
}

// FormatOptionsFromConfig derives formatter options from a Config. Invalid
// locale or timezone values fall back to Italian and UTC.
func FormatOptionsFromConfig(config *Config) FormatOptions {
	opts := FormatOptions{
		Locale:   language.Italian,
		Location: time.UTC,
	}
	if config == nil {
		return opts
	}
	if tag, err := language.Parse(config.Locale); err == nil {
		opts.Locale = tag
	}
	if config.Timezone != "" {
		if loc, err := time.LoadLocation(config.Timezone); err == nil {
			opts.Location = loc
		}
	}
	opts.CurrencySymbol = config.CurrencySymbol
	opts.CurrencyPrefix = config.CurrencyPrefix
	return opts
}

func registerBuiltinFormatters(registry *DefaultFormatterRegistry, opts FormatOptions) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	builtins := []Formatter{
		NewSimpleFormatter(FormatDate, func(v interface{}) string {
			return opts.formatTime(v, DateLayout)
		}),
		NewSimpleFormatter(FormatDateTime, func(v interface{}) string {
			return opts.formatTime(v, DateTimeLayout)
		}),
		NewSimpleFormatter(FormatCurrency, opts.formatCurrency),
		NewSimpleFormatter(FormatNumber, opts.formatNumber),
		NewSimpleFormatter(FormatUppercase, func(v interface{}) string {
			return cases.Upper(opts.Locale).String(FormatValue(v))
		}),
		NewSimpleFormatter(FormatLowercase, func(v interface{}) string {
			return cases.Lower(opts.Locale).String(FormatValue(v))
		}),
		NewSimpleFormatter(FormatCapitalize, func(v interface{}) string {
			return cases.Title(opts.Locale).String(FormatValue(v))
		}),
		NewSimpleFormatter(FormatNone, FormatValue),
	}

	for _, f := range builtins {
		_ = registry.RegisterFormatter(f)
	}
}

// Input layouts tried in order. Day-first layouts come before month-first
// ones, so 05/03/2020 reads as the 5th of March.
var inputDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, 02 Jan 2006 15:04:05",
	"Mon, 02 Jan 2006",
}

// parseDate attempts to parse a date from various input types. Strings without
// an explicit offset are read in loc.
func parseDate(value interface{}, loc *time.Location) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("cannot parse nil time pointer")
		}
		return *v, nil
	case int64:
		if v > 1e10 || v < -1e10 {
			return time.UnixMilli(v), nil
		}
		return time.Unix(v, 0), nil
	case int:
		return parseDate(int64(v), loc)
	case int32:
		return parseDate(int64(v), loc)
	case float64:
		return parseDate(int64(v), loc)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return parseDate(i, loc)
		}
		return parseDate(string(v), loc)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty date string")
		}
		for _, layout := range inputDateLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
	}
	return time.Time{}, fmt.Errorf("cannot parse %T as date", value)
}

func (o FormatOptions) formatTime(value interface{}, layout string) string {
	t, err := parseDate(value, o.Location)
	if err != nil {
		return ""
	}
	return t.In(o.Location).Format(layout)
}

func (o FormatOptions) formatCurrency(value interface{}) string {
	f, ok := toNumber(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	f = math.Round(f*100)/100 + 0

	p := message.NewPrinter(o.Locale)
	amount := p.Sprintf("%v", number.Decimal(f, number.Scale(2)))
	switch {
	case o.CurrencySymbol == "":
		return amount
	case o.CurrencyPrefix:
		return o.CurrencySymbol + " " + amount
	default:
		return amount + " " + o.CurrencySymbol
	}
}

func (o FormatOptions) formatNumber(value interface{}) string {
	f, ok := toNumber(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}

	p := message.NewPrinter(o.Locale)
	return p.Sprintf("%v", number.Decimal(math.Round(f)+0, number.MaxFractionDigits(0)))
}
