// Package textproc holds the text utilities the trend analyzer runs over
// collected posts: normalisation, hashtag extraction, keyword frequency and
// domain matching.
package textproc

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	urlPattern     = regexp.MustCompile(`http\S+`)
	digitPattern   = regexp.MustCompile(`\p{Nd}+`)
	hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
)

// Preprocess lowercases text and strips URLs, punctuation and digits
func Preprocess(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = stripPunctuation(text)
	return digitPattern.ReplaceAllString(text, "")
}

// ExtractHashtags returns the hashtags in text, without '#', in order of appearance
func ExtractHashtags(text string) []string {
	if text == "" {
		return nil
	}
	var tags []string
	for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, m[1])
	}
	return tags
}

// RemoveStopwords drops English stopwords from a lowercase text
func RemoveStopwords(text string) string {
	if text == "" {
		return ""
	}
	var kept []string
	for _, w := range strings.Fields(text) {
		if !IsStopword(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// TopWords counts words across texts and returns the n most frequent.
// Texts go through Preprocess and RemoveStopwords; the remaining words must be
// alphanumeric and longer than two characters.
func TopWords(texts []string, n int) map[string]int {
	var words []string
	for _, text := range texts {
		for _, w := range strings.Fields(RemoveStopwords(Preprocess(text))) {
			if utf8.RuneCountInString(w) <= 2 || !isAlnum(w) {
				continue
			}
			words = append(words, w)
		}
	}
	return CountTop(words, n)
}

// CountTop counts occurrences and keeps the n most common.
// Ties are resolved in favour of the item seen first.
func CountTop(items []string, n int) map[string]int {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, item := range items {
		if _, ok := counts[item]; !ok {
			firstSeen[item] = i
		}
		counts[item]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})

	top := make(map[string]int)
	for i, k := range keys {
		if i >= n {
			break
		}
		top[k] = counts[k]
	}
	return top
}

// IsDomainRelated reports whether text contains any keyword, case-insensitively
func IsDomainRelated(text string, keywords []string) bool {
	if text == "" || len(keywords) == 0 {
		return false
	}
	text = strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func stripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r)
}

func isAlnum(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
