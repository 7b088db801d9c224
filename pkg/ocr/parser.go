package ocr

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	cleanRe    = regexp.MustCompile(`[^\p{L}\p{N}.,\sx×X+-]`)
	qtyTotalRe = regexp.MustCompile(`(?i)^(.+?)\s+(\d+(?:[.,]\d+)?)\s*[x×]\s*(\d+(?:[.,]\d+)?)\s+(\d+(?:[.,]\d+)?)$`)
	numberRe   = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// stopWords end item parsing; everything after the totals line is footer noise.
var stopWords = []string{"итого", "total"}

// ParseItems extracts line items from raw receipt text. Two line forms are
// recognized: "NAME QTY x PRICE TOTAL" and "NAME ... PRICE TOTAL" (quantity
// defaults to 1). Lines that match neither are skipped.
func ParseItems(text string) []ParsedItem {
	var items []ParsedItem
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		stop := false
		for _, w := range stopWords {
			if strings.Contains(lower, w) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		if item, ok := parseLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseLine(line string) (ParsedItem, bool) {
	clean := strings.TrimSpace(cleanRe.ReplaceAllString(line, ""))
	if clean == "" {
		return ParsedItem{}, false
	}

	if m := qtyTotalRe.FindStringSubmatch(clean); m != nil {
		qty := parseNumber(m[2])
		if qty <= 0 {
			return ParsedItem{}, false
		}
		return ParsedItem{
			Name:        strings.TrimSpace(m[1]),
			QtyTotal:    int(math.Round(qty)),
			UnitPrice:   round2(parseNumber(m[3])),
			AmountTotal: round2(parseNumber(m[4])),
		}, true
	}

	idx := numberRe.FindAllStringIndex(clean, -1)
	if len(idx) < 2 {
		return ParsedItem{}, false
	}
	// The last two numbers are price and total; the name is whatever precedes
	// them.
	price := clean[idx[len(idx)-2][0]:idx[len(idx)-2][1]]
	total := clean[idx[len(idx)-1][0]:idx[len(idx)-1][1]]
	name := strings.TrimSpace(clean[:idx[len(idx)-2][0]])
	if name == "" {
		return ParsedItem{}, false
	}
	return ParsedItem{
		Name:        name,
		QtyTotal:    1,
		UnitPrice:   round2(parseNumber(price)),
		AmountTotal: round2(parseNumber(total)),
	}, true
}

func parseNumber(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
