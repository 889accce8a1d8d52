// Package render provides the HTML emission helpers used by the print-template
// renderer.
//
// The functions here are pure: they know how to escape text, write start and
// end tags, map template layout tags to HTML, post-process a rendered fragment
// and wrap it in a printable page. They do not import the printtmpl package, so
// the dependency only goes one way.
//
// # Structure Organization
//
//   - html.go: escaping, tag mapping and tag writers
//   - post.go: optional minification and sanitization of rendered output
//   - page.go: standalone HTML page with an @page rule for printing
package render
