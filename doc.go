// Package csvwriter writes lists of Go struct values as CSV text, deriving
// the header and every cell from the declared fields of each value's type.
//
// The central entry points are [WriteAll], [Marshal], and [WriteFile]. They
// accept a slice of records of any type; each record must be eligible, which
// means its type opted in to serialization.
//
// # Opting In
//
// A type opts in by implementing [Record], usually by embedding [Tag]:
//
//	type Person struct {
//		csvwriter.Tag
//		Name string
//		Tags []string
//		Age  *int
//	}
//
// A type that cannot be changed can be registered instead. [Register] derives
// its shape by reflection; [RegisterShape] takes an explicit, ordered list of
// columns and never inspects the type:
//
//	csvwriter.RegisterShape(csvwriter.ShapeOf[Point](
//		csvwriter.Col("x", func(p Point) any { return p.X }),
//		csvwriter.Col("y", func(p Point) any { return p.Y }),
//	))
//
// Use [IsEligible] to check a value at runtime.
//
// # Output
//
// The first eligible record defines the header line: its field names in
// declaration order. Every record then produces one data line with one cell
// per field of its own type. Lines are joined with a comma and terminated
// with "\n", including the last one. An empty record list produces no output
// at all, not even a header.
//
// Cells follow three rules:
//
//   - A slice or array of scalar values renders as its elements joined by
//     spaces inside brackets, e.g. "[a b c]". A nil or empty one renders "[]".
//   - A nil pointer, interface, map, channel, or function renders "-".
//   - Anything else renders its default text form: Error or String when the
//     type provides one, otherwise fmt's %v. Non-nil pointers are followed.
//
// Values are never quoted or escaped. A value whose text contains the
// delimiter or a newline breaks column alignment.
//
// # Field Selection
//
// All fields declared directly on the struct are columns, exported or not.
// Embedded structs are single columns named after their type; they are not
// flattened. An embedded [Tag] (or *Tag) and blank "_" fields are skipped. The csv
// struct tag renames a column or, with "-", omits it:
//
//	type Row struct {
//		csvwriter.Tag
//		ID     int    `csv:"id"`
//		Secret string `csv:"-"`
//	}
//
// # Mixed Record Types
//
// Only the first record's type shapes the header. Later records are checked
// for eligibility but not for matching shape, so a list mixing types with
// different fields produces misaligned columns without an error.
//
// # Options
//
// Implement [Delimited] on the record type to change the delimiter. Session
// options [WithRegistry] and [WithLogger] select a registry and a
// [log/slog] logger.
//
// # Streaming
//
// [WriteIter] and [WriteChan] write records as they arrive from an
// [iter.Seq] or a channel.
//
// # Errors
//
// The package exports sentinel errors for programmatic handling:
//
//   - [ErrNilInput] — the record list itself is nil
//   - [ErrIneligibleType] — a record's type has not opted in
//   - [ErrFieldAccess] — a field value could not be read
//   - [ErrSink] — writing to, flushing, or closing the output failed
//   - [ErrInvalidShape] — an explicit shape is malformed
//
// Writing stops at the first error. Lines already produced before the error
// are flushed to the output and are not retracted.
package csvwriter
