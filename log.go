package trailhead

import "net/url"

// LogMaskVal stands in for secrets, such as passwords and session tokens, in logs.
const LogMaskVal = "xxxxxx"

// Mask replaces every value for each of keys in vals with a single LogMaskVal.
// Keys not present in vals are left alone.
func Mask(vals url.Values, keys ...string) {
	for _, key := range keys {
		if _, ok := vals[key]; ok {
			vals[key] = []string{LogMaskVal}
		}
	}
}
