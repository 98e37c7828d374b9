// Package logging constructs the process-wide slog logger and provides
// shared attribute helpers. The console handler renders compact
// "TIME LEVEL component: message key=value" lines; the JSON handler is
// intended for log shipping.
package logging
