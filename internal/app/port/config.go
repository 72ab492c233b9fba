package port

import "context"

// RuntimeSettings gives access to named runtime settings such as API keys.
type RuntimeSettings interface {
	// GetSetting returns the value of the setting, or an empty string when it is not set.
	GetSetting(key string) string
}

type settingsContextKey struct{}

// ContextWithSettings returns a copy of ctx carrying the settings of a single request.
func ContextWithSettings(ctx context.Context, settings RuntimeSettings) context.Context {
	if settings == nil {
		return ctx
	}
	return context.WithValue(ctx, settingsContextKey{}, settings)
}

// SettingFromContext resolves key from the request settings carried by ctx,
// falling back to fallback when ctx has none or the value there is empty.
func SettingFromContext(ctx context.Context, key string, fallback RuntimeSettings) string {
	if s, ok := ctx.Value(settingsContextKey{}).(RuntimeSettings); ok {
		if v := s.GetSetting(key); v != "" {
			return v
		}
	}
	if fallback == nil {
		return ""
	}
	return fallback.GetSetting(key)
}
