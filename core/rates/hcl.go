package rates

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"travel-mate/core/determinism"
	"travel-mate/core/types"
	"travel-mate/internal/errors"
)

//go:embed default_rates.hcl
var defaultRatesHCL []byte

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Parse(defaultRatesHCL, "default_rates.hcl")
	if err != nil {
		panic(fmt.Sprintf("embedded rate table is invalid: %v", err))
	}
	t.source = "built-in"
	return t
})

// DefaultTable returns the rate table compiled into this build.
func DefaultTable() *Table {
	return defaultTable()
}

// rateFile is the HCL document layout.
type rateFile struct {
	RuleVersion string         `hcl:"rule_version"`
	Currency    string         `hcl:"currency,optional"`
	Domestic    rateBlock      `hcl:"domestic,block"`
	Countries   []countryBlock `hcl:"country,block"`
}

type rateBlock struct {
	FullDay    string `hcl:"full_day"`
	PartialDay string `hcl:"partial_day"`
}

type countryBlock struct {
	Code       string `hcl:"code,label"`
	FullDay    string `hcl:"full_day"`
	PartialDay string `hcl:"partial_day"`
}

// LoadFile reads an HCL rate table from disk.
func LoadFile(path string) (*Table, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("reading rate table "+path, err)
	}
	t, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	t.source = path
	return t, nil
}

// Parse decodes an HCL rate table. filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Table, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Config("parsing rate table "+filename, diags)
	}

	var doc rateFile
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, errors.Config("decoding rate table "+filename, diags)
	}

	if doc.RuleVersion != RuleVersion {
		return nil, errors.Newf(errors.TypeConfig,
			"rate table %s declares rule version %q but this build applies %q",
			filename, doc.RuleVersion, RuleVersion)
	}
	if doc.Currency != "" && determinism.Currency(doc.Currency) != determinism.EUR {
		return nil, errors.Newf(errors.TypeConfig,
			"rate table %s uses currency %q, only %s is supported", filename, doc.Currency, determinism.EUR)
	}

	domestic, err := rateSet(types.DomesticCountry, doc.Domestic.FullDay, doc.Domestic.PartialDay)
	if err != nil {
		return nil, err
	}

	intl := make(map[string]RateSet, len(doc.Countries))
	for _, c := range doc.Countries {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		switch {
		case code == "":
			return nil, errors.Newf(errors.TypeConfig, "rate table %s has a country block without a code", filename)
		case code == types.DomesticCountry:
			return nil, errors.Newf(errors.TypeConfig,
				"rate table %s lists %s as a country; use the domestic block", filename, code)
		}
		if _, dup := intl[code]; dup {
			return nil, errors.Newf(errors.TypeConfig, "rate table %s lists country %s twice", filename, code)
		}
		rs, err := rateSet(code, c.FullDay, c.PartialDay)
		if err != nil {
			return nil, err
		}
		intl[code] = rs
	}

	return NewTable(domestic, intl), nil
}

func rateSet(code, full, partial string) (RateSet, error) {
	f, err := parseRate(code, "full_day", full)
	if err != nil {
		return RateSet{}, err
	}
	p, err := parseRate(code, "partial_day", partial)
	if err != nil {
		return RateSet{}, err
	}
	return RateSet{FullDay: f, PartialDay: p}, nil
}

func parseRate(code, field, raw string) (determinism.Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return determinism.Money{}, errors.Config(fmt.Sprintf("rate %s.%s is not a decimal", code, field), err).
			WithContext(errors.KeyCountryCode, code)
	}
	if d.IsNegative() {
		return determinism.Money{}, errors.Newf(errors.TypeConfig, "rate %s.%s is negative: %s", code, field, raw).
			WithContext(errors.KeyCountryCode, code)
	}
	if !d.Equal(d.Round(determinism.MoneyPlaces)) {
		return determinism.Money{}, errors.Newf(errors.TypeConfig,
			"rate %s.%s has more than %d decimal places: %s", code, field, determinism.MoneyPlaces, raw).
			WithContext(errors.KeyCountryCode, code)
	}
	return determinism.NewMoneyFromDecimal(d, determinism.EUR), nil
}
