// Package extractors turns local files into plain text.
//
// Each sub-package implements driven.Extractor for a family of declared
// file types. The Registry in this package reads files, picks an
// extractor by extension (or by sniffing content when the extension is
// unknown) and builds the domain.RawDocument handed to the ingestion gate.
package extractors
