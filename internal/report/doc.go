// Package report renders resolution runs as text trees, JSON or YAML.
//
// Text output can be styled with lipgloss when writing to a terminal.
// JSON and YAML output share one document shape so scripts can switch
// between them freely.
package report
