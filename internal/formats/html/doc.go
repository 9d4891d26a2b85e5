// Package html implements the HTML fragment format on top of
// golang.org/x/net/html.
//
// Represented exactly: paragraphs, headings, lists with a start number,
// code blocks with a language (as class="language-x" on the inner code
// element), block quotes, horizontal rules, tables, emphasis, strong,
// strikethrough, underline, inline code, links, images, line breaks and
// color and size (span style declarations, or font attributes for 1-7
// levels).
//
// Degraded: quote attribution. Elements without a common equivalent are
// carried as raw HTML holding their rendered outer markup and written back
// verbatim.
//
// Whitespace in text is collapsed to single spaces outside pre elements.
package html
