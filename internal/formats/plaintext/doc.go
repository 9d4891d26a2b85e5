// Package plaintext implements the plain text format: paragraphs separated
// by blank lines, with single newlines kept as line breaks.
//
// Represented exactly: paragraphs, text and line breaks.
//
// Degraded: every other construct, following the common loss table.
// Headings become plain paragraphs, lists are prefixed with "- " or "N. ",
// tables become one line per row with cells joined by the table delimiter,
// links keep their target in parentheses and images keep their alt text.
package plaintext
