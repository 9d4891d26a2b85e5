// Package ast provides the common markup AST that every TransMark format
// converts through.
//
// The tree is single-rooted and ordered. A Document owns Block nodes; blocks
// own either further blocks (Quote, ListItem) or Inline nodes (Paragraph,
// Heading, TableCell). Inline nodes own only inline nodes. The Block and
// Inline interfaces are sealed, so a Block can never be stored under an
// Inline node.
//
// # Node Kinds
//
// Blocks:
//
//   - Paragraph, Heading (level 1-6), List / ListItem, CodeBlock, Quote,
//     ThematicBreak, Table / TableRow / TableCell
//   - Raw: opaque source text for constructs no common kind represents
//
// Inlines:
//
//   - Text, Emphasis, Strong, Strikethrough, Underline, Code, Link, Image,
//     LineBreak, Styled (color and size)
//   - RawInline: the inline counterpart of Raw
//
// # Ownership
//
// Every non-root node has exactly one owner. The New* constructors reject a
// child that already belongs to another parent, and Validate rejects shared
// or cyclic subtrees built by hand. Conversions consume their input: once a
// Document has been handed to ConvertFrom or a writer it is marked consumed
// and any further use fails with a structural violation.
//
// # Example
//
//	title, _ := ast.NewHeading(1, ast.NewText("Title!"))
//	doc, err := ast.NewDocument(title)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(ast.Dump(doc))
//	// (Document (Heading level=1 (Text "Title!")))
package ast
