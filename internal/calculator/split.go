package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitx/internal/models"
)

var (
	ErrNoParticipants    = errors.New("must have at least one participant")
	ErrNonPositiveAmount = models.ErrNonPositiveAmount
	ErrDuplicateShare    = models.ErrDuplicateSplit
	ErrPercentageTotal   = errors.New("percentages must add up to 100")
	ErrZeroSubtotal      = errors.New("subtotal cannot be zero")
	ErrUnassignedItems   = errors.New("assigned items must add up to the subtotal")
)

var hundred = decimal.NewFromInt(100)

// Share is one participant's input for percentage and exact splits: a
// percentage (0-100) or an amount, depending on the split type.
type Share struct {
	UserID string
	Value  decimal.Decimal
}

// PersonSplit represents the calculated split for one person
type PersonSplit struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Item represents a single line on an itemized receipt
type Item struct {
	Description string
	Amount      decimal.Decimal
	AssignedTo  []string
}

// Request describes an expense to split. Which fields are read depends on Type:
// equal uses Participants, percentage and exact use Shares, itemized uses
// Items, Subtotal and Participants.
type Request struct {
	Type         models.SplitType
	Amount       decimal.Decimal
	PayerID      string
	Participants []string
	Shares       []Share
	Items        []Item
	Subtotal     decimal.Decimal
}

// Compute turns a request into the splits stored on the expense. The payer's
// own split is marked paid. The result always sums to Amount within
// models.Tolerance.
func Compute(req Request) ([]models.Split, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	var (
		splits []models.Split
		err    error
	)
	switch req.Type {
	case models.SplitEqual:
		splits, err = Equal(req.Amount, req.Participants)
	case models.SplitPercentage:
		splits, err = Percentage(req.Amount, req.Shares)
	case models.SplitExact:
		splits, err = Exact(req.Amount, req.Shares)
	case models.SplitItemized:
		splits, err = Itemized(req.Items, req.Amount, req.Subtotal, req.Participants)
	default:
		return nil, fmt.Errorf("unknown split type %q", req.Type)
	}
	if err != nil {
		return nil, err
	}

	for i := range splits {
		splits[i].Paid = splits[i].UserID == req.PayerID
	}
	if !models.SplitsBalanced(req.Amount, splits) {
		return nil, fmt.Errorf("%w: splits total %s, expense %s",
			models.ErrSplitSumMismatch, models.SumSplits(splits), req.Amount)
	}
	return splits, nil
}

// Equal divides amount evenly in cents. Leftover cents go to the first
// participants, one each, so the shares add up exactly.
func Equal(amount decimal.Decimal, participants []string) ([]models.Split, error) {
	participants = dedupe(participants)
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	n := decimal.NewFromInt(int64(len(participants)))
	share := amount.Div(n).RoundDown(2)
	splits := make([]models.Split, len(participants))
	for i, p := range participants {
		splits[i] = models.Split{UserID: p, Amount: share}
	}
	distribute(splits, amount)
	return splits, nil
}

// Percentage splits amount by percentages that must total 100 (within the
// tolerance). Each share is rounded to cents and the rounding residue is
// spread a cent at a time from the first share.
func Percentage(amount decimal.Decimal, shares []Share) ([]models.Split, error) {
	if err := checkShares(shares); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, s := range shares {
		if s.Value.IsNegative() {
			return nil, fmt.Errorf("negative percentage for %s", s.UserID)
		}
		total = total.Add(s.Value)
	}
	if !models.WithinTolerance(total, hundred) {
		return nil, fmt.Errorf("%w: got %s", ErrPercentageTotal, total)
	}

	splits := make([]models.Split, len(shares))
	for i, s := range shares {
		splits[i] = models.Split{UserID: s.UserID, Amount: amount.Mul(s.Value).Div(hundred).RoundDown(2)}
	}
	distribute(splits, amount)
	return splits, nil
}

// Exact takes the amounts as given. They must add up to amount within the
// tolerance.
func Exact(amount decimal.Decimal, shares []Share) ([]models.Split, error) {
	if err := checkShares(shares); err != nil {
		return nil, err
	}

	splits := make([]models.Split, len(shares))
	for i, s := range shares {
		if s.Value.IsNegative() {
			return nil, fmt.Errorf("negative amount for %s", s.UserID)
		}
		splits[i] = models.Split{UserID: s.UserID, Amount: s.Value}
	}
	if !models.SplitsBalanced(amount, splits) {
		return nil, fmt.Errorf("%w: splits total %s, expense %s",
			models.ErrSplitSumMismatch, models.SumSplits(splits), amount)
	}
	return splits, nil
}

// Itemized computes per-person totals with CalculateSplit and rounds them to
// cents, in participant order.
func Itemized(items []Item, billTotal, billSubtotal decimal.Decimal, participants []string) ([]models.Split, error) {
	participants = dedupe(participants)
	per, err := CalculateSplit(items, billTotal, billSubtotal, participants)
	if err != nil {
		return nil, err
	}

	covered := decimal.Zero
	splits := make([]models.Split, 0, len(participants))
	for _, p := range participants {
		covered = covered.Add(per[p].Subtotal)
		splits = append(splits, models.Split{UserID: p, Amount: per[p].Total.RoundDown(2)})
	}
	if !models.WithinTolerance(covered, billSubtotal) {
		return nil, fmt.Errorf("%w: items cover %s of %s", ErrUnassignedItems, covered.Round(2), billSubtotal)
	}
	distribute(splits, billTotal)
	return splits, nil
}

// CalculateSplit computes how much each person owes including proportional tax
// Based on the algorithm: person_total = person_subtotal × (1 + (total_tax / bill_subtotal))
func CalculateSplit(items []Item, billTotal, billSubtotal decimal.Decimal, participants []string) (map[string]*PersonSplit, error) {
	if billSubtotal.IsZero() {
		return nil, ErrZeroSubtotal
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	tax := billTotal.Sub(billSubtotal)
	splits := make(map[string]*PersonSplit, len(participants))
	for _, p := range participants {
		splits[p] = &PersonSplit{Subtotal: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	}

	// No items: everyone pays an equal part of everything.
	if len(items) == 0 {
		n := decimal.NewFromInt(int64(len(participants)))
		for _, split := range splits {
			split.Subtotal = billSubtotal.Div(n)
			split.Tax = tax.Div(n)
			split.Total = billTotal.Div(n)
		}
		return splits, nil
	}

	for _, item := range items {
		if len(item.AssignedTo) == 0 {
			continue
		}
		perPerson := item.Amount.Div(decimal.NewFromInt(int64(len(item.AssignedTo))))
		for _, person := range item.AssignedTo {
			if split, ok := splits[person]; ok {
				split.Subtotal = split.Subtotal.Add(perPerson)
			}
		}
	}

	rate := tax.Div(billSubtotal)
	for _, split := range splits {
		split.Tax = split.Subtotal.Mul(rate)
		split.Total = split.Subtotal.Add(split.Tax)
	}
	return splits, nil
}

// distribute hands out the difference between target and the current sum in
// whole cents, starting from the first split and wrapping around.
func distribute(splits []models.Split, target decimal.Decimal) {
	if len(splits) == 0 {
		return
	}
	cent := decimal.New(1, -2)
	residue := target.Sub(models.SumSplits(splits)).Div(cent).Truncate(0).IntPart()
	step := cent
	if residue < 0 {
		step = cent.Neg()
		residue = -residue
	}
	for i := int64(0); i < residue; i++ {
		k := int(i % int64(len(splits)))
		splits[k].Amount = splits[k].Amount.Add(step)
	}
}

// checkShares rejects an empty share list and any user named twice.
func checkShares(shares []Share) error {
	if len(shares) == 0 {
		return ErrNoParticipants
	}
	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if s.UserID == "" {
			return errors.New("share user is required")
		}
		if seen[s.UserID] {
			return fmt.Errorf("%w: %s", ErrDuplicateShare, s.UserID)
		}
		seen[s.UserID] = true
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
