// Package xml provides the generic XML layer used by the print-template parser.
//
// Parsing a template happens in two passes over the raw text:
//
//   - Check runs a token-level scan with encoding/xml and reports every
//     well-formedness problem it can recover from (mismatched or unclosed tags,
//     content after the root element, nesting that is too deep) together with
//     its line and column. A hard syntax error (bad attribute syntax, an unknown
//     entity reference, a truncated tag) stops the scan since the token stream
//     after it is unreliable.
//   - Load builds an etree document from text that passed Check. CDATA
//     sections are preserved so the parser can tell raw CSS from text.
//
// # Structure Organization
//
//   - scanner.go: Check and the Diagnostic type
//   - tree.go: Load and small etree helpers
//   - charset.go: CharsetReader for documents that declare a non UTF-8 encoding
//
// This package does not know anything about template semantics. The typed node
// tree (variables, loops, conditions) is lifted from the etree document by the
// printtmpl package.
package xml
