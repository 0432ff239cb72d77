package linear

// FormatDuration exposes formatDuration for tests.
var FormatDuration = formatDuration
