package history

import (
	"encoding/json"
	"unicode/utf8"
)

// CharsPerToken is the approximation ratio used when no exact count is available.
const CharsPerToken = 4

// Estimate approximates the token size of turns as ceil(chars/4), counting
// text and the JSON form of calls and results.
func Estimate(turns []Turn) int {
	chars := 0
	for _, t := range turns {
		for _, p := range t.Parts {
			chars += utf8.RuneCountInString(p.Text)
			if p.Call != nil {
				chars += jsonLen(p.Call)
			}
			if p.Result != nil {
				chars += jsonLen(p.Result.Payload())
			}
		}
	}
	return (chars + CharsPerToken - 1) / CharsPerToken
}

func jsonLen(v any) int {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return utf8.RuneCount(raw)
}
