// Package bbcode implements the BBCode format.
//
// Supported tags: b i u s color size style url img code icode pre quote
// list ul ol li [*] table tr th td hr noparse. The tags center, left, right,
// spoiler and youtube, and any unknown tag, are kept as raw BBCode and
// re-emitted verbatim. The content of code, icode, pre and noparse is literal.
//
// Represented exactly: paragraphs, emphasis, strong, strikethrough,
// underline, inline code, code blocks with language, links, images, line
// breaks, color, size, lists, quotes with attribution, tables and thematic
// breaks.
//
// Degraded: headings become a bold paragraph.
//
// Literal text that would otherwise be read as a tag is written inside
// [noparse]...[/noparse].
package bbcode
