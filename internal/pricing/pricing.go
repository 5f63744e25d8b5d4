// Package pricing computes amount_due for a new job from the selected string
// and the intake add-ons.
package pricing

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/stringdesk/stringing-service/internal/domain"
)

// FeeTable holds every surcharge in cents.
type FeeTable struct {
	BaseFee       int64            `toml:"base_fee"`
	Rush          map[string]int64 `toml:"rush"`
	Tier          map[string]int64 `toml:"tier"`
	GrommetRepair int64            `toml:"grommet_repair"`
	GripAddOn     int64            `toml:"grip_add_on"`
}

// DefaultFeeTable mirrors the shop's published prices.
func DefaultFeeTable() FeeTable {
	return FeeTable{
		BaseFee: 2500,
		Rush: map[string]int64{
			string(domain.RushNone):    0,
			string(domain.RushOneDay):  1000,
			string(domain.RushTwoHour): 2000,
		},
		Tier: map[string]int64{
			string(domain.ServiceTierDefault):    0,
			string(domain.ServiceTierSpecialist): 1000,
		},
	}
}

// LoadFeeTable reads a TOML fee file on top of the defaults. An empty path
// returns the defaults unchanged.
//
//	base_fee = 2800
//	grommet_repair = 500
//	[rush]
//	"1-day" = 1200
func LoadFeeTable(path string) (FeeTable, error) {
	table := DefaultFeeTable()
	if path == "" {
		return table, nil
	}
	if _, err := os.Stat(path); err != nil {
		return table, fmt.Errorf("pricing file: %w", err)
	}
	var override FeeTable
	meta, err := toml.DecodeFile(path, &override)
	if err != nil {
		return table, fmt.Errorf("decode pricing file %s: %w", path, err)
	}
	if meta.IsDefined("base_fee") {
		table.BaseFee = override.BaseFee
	}
	if meta.IsDefined("grommet_repair") {
		table.GrommetRepair = override.GrommetRepair
	}
	if meta.IsDefined("grip_add_on") {
		table.GripAddOn = override.GripAddOn
	}
	for k, v := range override.Rush {
		table.Rush[k] = v
	}
	for k, v := range override.Tier {
		table.Tier[k] = v
	}
	return table, table.validate()
}

func (t FeeTable) validate() error {
	if t.BaseFee < 0 || t.GrommetRepair < 0 || t.GripAddOn < 0 {
		return fmt.Errorf("pricing: fees must not be negative")
	}
	for k, v := range t.Rush {
		if v < 0 {
			return fmt.Errorf("pricing: rush fee %q is negative", k)
		}
	}
	for k, v := range t.Tier {
		if v < 0 {
			return fmt.Errorf("pricing: tier fee %q is negative", k)
		}
	}
	return nil
}

// LineItem is one priced component of a quote.
type LineItem struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Amount int64  `json:"amount_cents"`
}

// Quote is the itemized amount due.
type Quote struct {
	Items []LineItem `json:"items"`
	Total int64      `json:"total_cents"`
}

// Quote prices a string with add-ons. A string without a positive price uses the base fee.
func (t FeeTable) Quote(str *domain.StringOption, addOns domain.AddOns) Quote {
	base := t.BaseFee
	label := "Base stringing fee"
	if str != nil && str.PriceCents > 0 {
		base = str.PriceCents
		label = str.DisplayName()
	}
	q := Quote{}
	q.add("base", label, base)

	rush := addOns.Rush
	if rush == "" {
		rush = domain.RushNone
	}
	if fee := t.Rush[string(rush)]; fee > 0 {
		q.add("rush", fmt.Sprintf("Rush service (%s)", rush), fee)
	}
	tier := addOns.Tier
	if tier == "" {
		tier = domain.ServiceTierDefault
	}
	if fee := t.Tier[string(tier)]; fee > 0 {
		q.add("tier", "Specialist stringer", fee)
	}
	if addOns.GrommetRepair && t.GrommetRepair > 0 {
		q.add("grommet_repair", "Grommet repair", t.GrommetRepair)
	}
	if addOns.GripAddOn && t.GripAddOn > 0 {
		q.add("grip_add_on", "Grip", t.GripAddOn)
	}
	return q
}

// AmountDue is Quote(...).Total.
func (t FeeTable) AmountDue(str *domain.StringOption, addOns domain.AddOns) int64 {
	return t.Quote(str, addOns).Total
}

func (q *Quote) add(key, label string, amount int64) {
	q.Items = append(q.Items, LineItem{Key: key, Label: label, Amount: amount})
	q.Total += amount
}
