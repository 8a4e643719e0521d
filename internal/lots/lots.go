package lots

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/lotcataloger/internal/models"
)

// DefaultSeparator splits the lot key from the image index, e.g. "12-3.jpg"
const DefaultSeparator = "-"

var (
	ErrNoSeparator   = errors.New("filename has no lot separator")
	ErrInvalidLotKey = errors.New("lot key is not an integer")
)

// ParseLotKey returns the part of filename before the first separator.
// The key must be an unsigned base-10 integer.
func ParseLotKey(filename, sep string) (string, error) {
	if sep == "" {
		sep = DefaultSeparator
	}

	key, _, found := strings.Cut(filename, sep)
	if !found {
		return "", fmt.Errorf("%w: %q", ErrNoSeparator, filename)
	}

	if _, ok := numericKey(key); !ok {
		return "", fmt.Errorf("%w: %q in %q", ErrInvalidLotKey, key, filename)
	}

	return key, nil
}

// Parse derives the lot key of every filename. Names that fail to parse are
// logged and returned as failures.
func Parse(filenames []string, sep string) ([]models.ImageAsset, []models.Failure) {
	var assets []models.ImageAsset
	var failures []models.Failure
	for _, name := range filenames {
		key, err := ParseLotKey(name, sep)
		if err != nil {
			slog.Warn("Skipping invalid filename", "filename", name, "err", err)
			failures = append(failures, models.NewFailure(models.StageParse, name, err))
			continue
		}
		assets = append(assets, models.ImageAsset{Filename: name, LotKey: key})
	}
	return assets, failures
}

// Group collects filenames into lots ordered by the numeric value of their key.
func Group(filenames []string, sep string) ([]models.LotGroup, []models.Failure) {
	assets, failures := Parse(filenames, sep)

	index := make(map[string]int)
	var groups []models.LotGroup
	for _, asset := range assets {
		i, ok := index[asset.LotKey]
		if !ok {
			i = len(groups)
			index[asset.LotKey] = i
			groups = append(groups, models.LotGroup{LotKey: asset.LotKey})
		}
		groups[i].Images = append(groups[i].Images, asset.Filename)
	}

	sortGroups(groups)
	return groups, failures
}

// GroupPerImage makes every image its own group.
// Keys that parse are used for ordering; the rest keep listing order after them.
func GroupPerImage(filenames []string, sep string) []models.LotGroup {
	groups := make([]models.LotGroup, 0, len(filenames))
	for _, name := range filenames {
		key, err := ParseLotKey(name, sep)
		if err != nil {
			key = name
		}
		groups = append(groups, models.LotGroup{LotKey: key, Images: []string{name}})
	}

	sortGroups(groups)
	return groups
}

func sortGroups(groups []models.LotGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, aok := numericKey(groups[i].LotKey)
		b, bok := numericKey(groups[j].LotKey)
		switch {
		case aok && bok:
			if a != b {
				return a < b
			}
			return groups[i].LotKey < groups[j].LotKey
		case aok:
			return true
		default:
			return false
		}
	})
}

func numericKey(key string) (uint64, bool) {
	if key == "" {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
