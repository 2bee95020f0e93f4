package chunking

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minHeadingsForDynamic = 3
	minSectionsForDynamic = 5
)

// headingPattern matches markdown headers, numbered headings and short
// colon-terminated lines in Latin or Arabic script.
var headingPattern = regexp.MustCompile(`(?m)^(#{1,6}\s+|\d+\.\s+[A-Za-z\x{0600}-\x{06FF}]|[A-Za-z\x{0600}-\x{06FF}][^.\n]{0,50}:)\s*`)

// Analyze inspects raw text and optional section texts and picks a chunking plan.
// Documents with many headings or very uneven sections are chunked along their
// structure; everything else gets fixed-size windows.
func Analyze(rawText string, sections []string) Plan {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Plan{Strategy: StrategyFixed, Fixed: DefaultFixedParams()}
	}

	if len(sections) == 0 {
		sections = []string{text}
	}

	headingCount := CountHeadings(text)

	lengths := make([]int, 0, len(sections))
	for _, s := range sections {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		lengths = append(lengths, utf8.RuneCountInString(trimmed))
	}

	highVariance := false
	if len(lengths) >= 2 {
		mean, variance := meanVariance(lengths)
		highVariance = variance > (mean*2)*(mean*2)
	}

	structured := headingCount >= minHeadingsForDynamic ||
		(len(lengths) >= minSectionsForDynamic && highVariance)

	if structured {
		return Plan{Strategy: StrategyDynamic, Dynamic: DefaultDynamicParams()}
	}
	return Plan{Strategy: StrategyFixed, Fixed: DefaultFixedParams()}
}

// CountHeadings returns the number of heading-like lines in text.
func CountHeadings(text string) int {
	return len(headingPattern.FindAllStringIndex(text, -1))
}

// meanVariance returns the mean and population variance of values.
func meanVariance(values []int) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	return mean, sq / float64(len(values))
}
