package i18n

var symbolMap = map[string]string{
	"success": "✓",
	"error":   "✗",
	"warning": "⚠",
	"info":    "ℹ",
}

var asciiSymbolMap = map[string]string{
	"success": "[ok]",
	"error":   "[x]",
	"warning": "[!]",
	"info":    "[i]",
}

// Symbol returns a status symbol, or its ASCII alternative when emoji are off
func (l *Localizer) Symbol(name string) string {
	symbols := symbolMap
	if l.noEmoji {
		symbols = asciiSymbolMap
	}
	if symbol, ok := symbols[name]; ok {
		return symbol
	}
	return "?"
}

// FormatStatus prefixes message with the symbol for status
func (l *Localizer) FormatStatus(status, message string) string {
	return l.Symbol(status) + " " + message
}

// FormatStatus formats a status message using the global localizer
func FormatStatus(status, message string) string {
	if Global == nil {
		return message
	}
	return Global.FormatStatus(status, message)
}
