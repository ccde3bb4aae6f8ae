package audit

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	// CPF/CNPJ/phone-like digit runs, with or without punctuation.
	documentPattern = regexp.MustCompile(`\d[\d.\-/ ]{9,}\d`)
)

var sensitiveKeys = map[string]struct{}{
	"email":              {},
	"customer_email":     {},
	"name":               {},
	"customer_name":      {},
	"display_name":       {},
	"document":           {},
	"cpf":                {},
	"cnpj":               {},
	"cnpj_origem":        {},
	"phone":              {},
	"token":              {},
	"hottok":             {},
	"secret":             {},
	"password":           {},
	"authorization":      {},
	"asaas-access-token": {},
	"x-hotmart-hottok":   {},
	"x-webhook-token":    {},
}

// RedactEmail keeps the first character of the local part and the domain.
func RedactEmail(email string) string {
	e := strings.TrimSpace(email)
	at := strings.LastIndex(e, "@")
	if at <= 0 {
		return maskAll(e)
	}
	return e[:1] + "***" + e[at:]
}

// RedactString masks emails and document-like digit runs inside free text.
func RedactString(s string) string {
	out := emailPattern.ReplaceAllStringFunc(s, RedactEmail)
	return documentPattern.ReplaceAllStringFunc(out, func(m string) string {
		digits := onlyDigits(m)
		if len(digits) < 4 {
			return "***"
		}
		return "***" + digits[len(digits)-2:]
	})
}

// RedactFields returns a copy of fields that is safe to log: values under
// sensitive keys are masked and every string value is scrubbed.
func RedactFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = redactValue(strings.ToLower(k), v)
	}
	return out
}

func redactValue(key string, v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		if _, ok := sensitiveKeys[key]; ok {
			if strings.Contains(key, "email") {
				return RedactEmail(val)
			}
			return maskAll(val)
		}
		return RedactString(val)
	case map[string]interface{}:
		return RedactFields(val)
	case []interface{}:
		items := make([]interface{}, len(val))
		for i, item := range val {
			items[i] = redactValue(key, item)
		}
		return items
	default:
		return v
	}
}

func maskAll(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
