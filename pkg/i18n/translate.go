package i18n

// Convenience functions that use the Global localizer

// T translates a message using the global localizer
func T(key string, data ...map[string]interface{}) string {
	if Global == nil {
		return key
	}
	return Global.T(key, data...)
}

// Tc translates with count (for pluralization) using the global localizer
func Tc(key string, count int, data ...map[string]interface{}) string {
	if Global == nil {
		return key
	}
	return Global.Tc(key, count, data...)
}
