// Package export writes audit job records as CSV or JSON.
//
// Exporters accept either a slice or a channel of records. Stream pages
// through an audit.Store so exports of any size run in constant memory:
//
//	exp, _ := export.New("csv")
//	err := export.Stream(ctx, store, &audit.Query{Status: audit.StatusFallback}, exp, os.Stdout)
//
// Exported rows carry the redacted decision only; prompt text never reaches
// the store and so never reaches an export.
package export
