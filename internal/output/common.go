package output

// Catalogue output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Formats lists the accepted values of --format.
var Formats = []string{FormatText, FormatJSON, FormatJSONL}
