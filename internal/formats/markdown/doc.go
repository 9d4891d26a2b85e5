// Package markdown implements the Markdown format on top of goldmark.
//
// Two flavors are supported: CommonMark and GitHub Flavored Markdown (the
// default), which adds pipe tables, strikethrough and bare URL autolinks.
//
// Represented exactly: paragraphs, headings, lists with a start number,
// fenced code blocks with a language, block quotes, thematic breaks,
// emphasis, strong, inline code, links, images and hard line breaks. GFM
// also represents strikethrough and tables, which must be rectangular and
// start with a header row; other tables are padded or given a header.
//
// Degraded: color, size, underline and quote attribution. HTML blocks and
// inline HTML are carried as raw markdown and written back verbatim.
//
// Soft line breaks read as a single space. The writer puts every paragraph
// on one line, separates blocks with a blank line and ends the document with
// a newline.
package markdown
