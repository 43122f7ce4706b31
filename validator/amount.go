/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package validator

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var amountPattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d+)\s*(万|千)?円`)

// ExtractAmounts returns the distinct positive yen amounts written in text,
// ascending. 万円 and 千円 amounts are scaled.
func ExtractAmounts(text string) []int64 {
	var amounts []int64
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "万":
			n *= 10000
		case "千":
			n *= 1000
		}
		if n > 0 && !slices.Contains(amounts, n) {
			amounts = append(amounts, n)
		}
	}
	slices.Sort(amounts)
	return amounts
}

// IsCalculatedAmount reports whether amount can be derived from the question
// amounts as the difference of two, the sum of all, or a run of consecutive
// amounts in ascending order.
func IsCalculatedAmount(amounts []int64, amount int64) bool {
	for i := range amounts {
		for j := i + 1; j < len(amounts); j++ {
			if amounts[j]-amounts[i] == amount {
				return true
			}
		}
	}

	var total int64
	for _, a := range amounts {
		total += a
	}
	if total == amount {
		return true
	}

	for i := range amounts {
		var partial int64
		for j := i; j < len(amounts); j++ {
			partial += amounts[j]
			if partial == amount {
				return true
			}
		}
	}
	return false
}
