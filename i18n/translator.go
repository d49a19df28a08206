package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "type" or "property").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "unsupported_type":
			msg = "サポートされていない型です"
		case "invalid_type":
			msg = "型が不正です"
		case "required":
			msg = "必須プロパティが不足しています"
		case "invalid_value":
			msg = "値が不正です"
		case "invalid_format":
			msg = "書式が不正です"
		case "unknown_key":
			msg = "未知のキーです"
		case "too_short":
			msg = "要素が不足しています"
		case "too_long":
			msg = "要素が多すぎます"
		}
	default: // "en"
		switch code {
		case "unsupported_type":
			msg = "unsupported type"
		case "invalid_type":
			msg = "invalid type"
		case "required":
			msg = "required property missing"
		case "invalid_value":
			msg = "invalid value"
		case "invalid_format":
			msg = "invalid format"
		case "unknown_key":
			msg = "unknown key"
		case "too_short":
			msg = "too few elements"
		case "too_long":
			msg = "too many elements"
		}
	}
	if msg == "" {
		return code
	}
	if subject := data["subject"]; subject != "" {
		return msg + ": " + subject
	}
	return msg
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	lang = strings.ToLower(lang)
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
