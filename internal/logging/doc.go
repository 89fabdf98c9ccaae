// Package logging constructs the shared slog logger for simdb commands.
// Output defaults to a human-readable console format on a terminal and
// JSON otherwise; both honor the configured level and output paths.
package logging
