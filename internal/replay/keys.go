package replay

import "unicode"

// Named keys with identical key value and canonical code.
var namedKeys = map[string]string{
	"Enter":      "Enter",
	"Tab":        "Tab",
	"Escape":     "Escape",
	"Backspace":  "Backspace",
	"Delete":     "Delete",
	"ArrowUp":    "ArrowUp",
	"ArrowDown":  "ArrowDown",
	"ArrowLeft":  "ArrowLeft",
	"ArrowRight": "ArrowRight",
	"Home":       "Home",
	"End":        "End",
	"PageUp":     "PageUp",
	"PageDown":   "PageDown",
}

// keyCode returns the key value and canonical physical code for a key name
// or a single character.
func keyCode(key string) (string, string) {
	if code, ok := namedKeys[key]; ok {
		return key, code
	}
	if key == " " || key == "Space" {
		return " ", "Space"
	}
	runes := []rune(key)
	if len(runes) == 1 {
		r := runes[0]
		switch {
		case unicode.IsLetter(r):
			return key, "Key" + string(unicode.ToUpper(r))
		case r >= '0' && r <= '9':
			return key, "Digit" + string(r)
		}
		return key, ""
	}
	return key, key
}
