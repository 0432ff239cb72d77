package assets

// FormatBytes exposes formatBytes for tests.
var FormatBytes = formatBytes
