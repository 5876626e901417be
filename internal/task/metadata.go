package task

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// PhoneKey is the metadata key recognized phone numbers are stored under.
const PhoneKey = "phone"

var metadataPattern = regexp.MustCompile(`(?:^|\s)([\p{L}\p{N}_]+:[^\s]+\S*)`)

const areaCode = `[2-9]1[02-9]|[2-9][02-8]1|[2-9][02-8][02-9]`

// phonePattern recognizes North American numbers such as 555-234-5678,
// (555) 234 5678 or +1.555.234.5678 x12.
var phonePattern = regexp.MustCompile(
	`(?:(?:\+?1\s*(?:[.-]\s*)?)?` +
		`(?:\(\s*(?:` + areaCode + `)\s*\)|(?:` + areaCode + `))` +
		`\s*(?:[.-]\s*)?)` +
		`(?:[2-9]1[02-9]|[2-9][02-9]1|[2-9][02-9]{2})` +
		`\s*(?:[.-]\s*)?[0-9]{4}` +
		`(?:\s*(?:#|x\.?|ext\.?|extension)\s*\d+)?`)

// extractMetadata collects key:value tokens first, then recognized phone
// numbers. Later entries whose key is taken get a numeric suffix.
func extractMetadata(line string) map[string]string {
	var md map[string]string
	add := func(key, value string) {
		if md == nil {
			md = make(map[string]string)
		}
		md[uniqueKey(md, key)] = value
	}

	for _, m := range metadataPattern.FindAllStringSubmatch(line, -1) {
		key, value, _ := strings.Cut(m[1], ":")
		add(key, value)
	}
	for _, number := range findPhoneNumbers(line) {
		add(PhoneKey, number)
	}
	return md
}

// uniqueKey returns key if it is free. Otherwise it appends the number of
// keys that are key followed only by digits, counting up past any suffix
// that is already in use.
func uniqueKey(md map[string]string, key string) string {
	if _, taken := md[key]; !taken {
		return key
	}

	n := 0
	for k := range md {
		if suffix, ok := strings.CutPrefix(k, key); ok && isDigits(suffix) {
			n++
		}
	}
	for {
		candidate := key + strconv.Itoa(n)
		if _, taken := md[candidate]; !taken {
			return candidate
		}
		n++
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// findPhoneNumbers returns every phone number in line that is not already
// written as a phone: tag. After a rejected match the scan resumes one rune
// later so a shorter number inside the tag can still be found.
func findPhoneNumbers(line string) []string {
	var numbers []string
	for pos := 0; pos < len(line); {
		loc := phonePattern.FindStringIndex(line[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if strings.HasSuffix(line[:start], PhoneKey+":") {
			_, size := utf8.DecodeRuneInString(line[start:])
			pos = start + size
			continue
		}
		numbers = append(numbers, line[start:end])
		pos = end
	}
	return numbers
}
