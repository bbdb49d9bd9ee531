package service

import (
	"fmt"
	"sort"
	"strings"

	"mgacha-dashboard/internal/model"

	"golang.org/x/text/cases"
)

// SortKey selects the ordering of a card list.
type SortKey string

const (
	SortNumber   SortKey = "number"
	SortName     SortKey = "name"
	SortRarity   SortKey = "rarity"
	SortQuantity SortKey = "quantity"
)

// Filter narrows a card list by ownership.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterOwned   Filter = "owned"
	FilterUnowned Filter = "unowned"
)

// sortKeyAliases maps accepted spellings, including the dashboard's Portuguese labels.
var sortKeyAliases = map[string]SortKey{
	"number":     SortNumber,
	"número":     SortNumber,
	"numero":     SortNumber,
	"name":       SortName,
	"nome":       SortName,
	"rarity":     SortRarity,
	"raridade":   SortRarity,
	"quantity":   SortQuantity,
	"quantidade": SortQuantity,
}

// ParseSortKey resolves a sort key name, case-insensitively.
func ParseSortKey(s string) (SortKey, error) {
	if key, ok := sortKeyAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return key, nil
	}
	return "", fmt.Errorf("%w: sort key %q", ErrInvalidParam, s)
}

// ParseFilter resolves an ownership filter. An empty value means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterOwned:
		return FilterOwned, nil
	case FilterUnowned:
		return FilterUnowned, nil
	}
	return "", fmt.Errorf("%w: filter %q", ErrInvalidParam, s)
}

// RarityRank returns the position of rarity in model.RarityTiers; 0 is the rarest.
func RarityRank(rarity string) (int, error) {
	for i, tier := range model.RarityTiers {
		if tier == rarity {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRarity, rarity)
}

// SortState is a session's sort selection.
type SortState struct {
	Key        SortKey `json:"key"`
	Descending bool    `json:"descending"`
}

// DefaultSortState orders by card number, ascending.
func DefaultSortState() SortState {
	return SortState{Key: SortNumber}
}

// SetKey changes the sort key. Choosing a new key resets the direction:
// descending for quantity, ascending for everything else. Re-selecting the
// current key keeps the direction the user chose.
func (s *SortState) SetKey(key SortKey) {
	if key == s.Key {
		return
	}
	s.Key = key
	s.Descending = key == SortQuantity
}

// Params are the inputs of Apply.
type Params struct {
	Key        SortKey
	Descending bool
	Filter     Filter
}

// Apply filters views by ownership and then sorts them. The input slice is never modified.
// Rarity sorting fails with ErrUnknownRarity if any remaining card has a rarity outside the tiers.
func Apply(views []model.CardView, p Params) ([]model.CardView, error) {
	out := make([]model.CardView, 0, len(views))
	for _, v := range views {
		switch p.Filter {
		case FilterOwned:
			if !v.Owned {
				continue
			}
		case FilterUnowned:
			if v.Owned {
				continue
			}
		case FilterAll, "":
		default:
			return nil, fmt.Errorf("%w: filter %q", ErrInvalidParam, p.Filter)
		}
		out = append(out, v)
	}

	less, err := comparator(out, p.Key)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if p.Descending {
			return less(j, i)
		}
		return less(i, j)
	})
	return out, nil
}

// comparator resolves derived keys per distinct value up front, so the sort itself cannot fail.
func comparator(out []model.CardView, key SortKey) (func(i, j int) bool, error) {
	switch key {
	case SortNumber, "":
		return func(i, j int) bool { return out[i].Number < out[j].Number }, nil
	case SortQuantity:
		return func(i, j int) bool { return out[i].Quantity < out[j].Quantity }, nil
	case SortName:
		fold := cases.Fold()
		folded := make(map[string]string, len(out))
		for _, v := range out {
			if _, ok := folded[v.Name]; !ok {
				folded[v.Name] = fold.String(v.Name)
			}
		}
		return func(i, j int) bool { return folded[out[i].Name] < folded[out[j].Name] }, nil
	case SortRarity:
		ranks := make(map[string]int, len(model.RarityTiers))
		for _, v := range out {
			if _, ok := ranks[v.Rarity]; ok {
				continue
			}
			rank, err := RarityRank(v.Rarity)
			if err != nil {
				return nil, err
			}
			ranks[v.Rarity] = rank
		}
		return func(i, j int) bool { return ranks[out[i].Rarity] < ranks[out[j].Rarity] }, nil
	default:
		return nil, fmt.Errorf("%w: sort key %q", ErrInvalidParam, key)
	}
}
