package logger

// PreviewLen is the default preview length for log excerpts.
const PreviewLen = 80

// previewMarker terminates a truncated preview.
const previewMarker = '…'

// Preview truncates text for log previews. Inputs at or under maxLen runes
// come back unchanged; longer inputs are cut to maxLen runes plus the
// marker.
func Preview(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + string(previewMarker)
}
