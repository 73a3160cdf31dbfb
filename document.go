package ember

// Field is a single named value on a Document. Indexed fields contribute
// postings and a norm; Stored fields are kept verbatim for retrieval via
// Reader.GetDoc but never contribute to search. An indexed field is either
// Analyzed - run through the configured Analyzer's tokenize/lowercase/
// stopword/stem pipeline, the right choice for prose fields like "body" - or
// left unanalyzed, indexed as a single literal term equal to Value, the right
// choice for structured fields (category paths, dates, numbers) that Prefix,
// Wildcard, Range and TypedRange queries expect to find whole in the term
// dictionary.
type Field struct {
	Name     string
	Value    string
	Indexed  bool
	Stored   bool
	Analyzed bool
}

// NewTextField returns a field that is indexed, stored, and analyzed: the
// common case for free-text prose fields.
func NewTextField(name, value string) Field {
	return Field{Name: name, Value: value, Indexed: true, Stored: true, Analyzed: true}
}

// NewKeywordField returns a field that is indexed and stored but not
// analyzed: Value is indexed verbatim as a single term, the shape structured
// fields (categories, dates, numbers) need for exact, prefix, wildcard and
// range queries to see the literal bytes the caller wrote.
func NewKeywordField(name, value string) Field {
	return Field{Name: name, Value: value, Indexed: true, Stored: true, Analyzed: false}
}

// NewStoredField returns a field that is retrievable but not searchable.
func NewStoredField(name, value string) Field {
	return Field{Name: name, Value: value, Indexed: false, Stored: true}
}

// Document is the unit of indexing and retrieval: an ordered set of fields.
// The same field name may repeat (multi-valued fields); all values are
// indexed (each analyzed or not per its Analyzed bit) and contribute
// positions to the same field's (field, term) posting lists.
type Document struct {
	Fields []Field
}

// Get returns the first stored/indexed value for name, or "" if absent.
func (d Document) Get(name string) string {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// GetAll returns every value stored under name, in field order.
func (d Document) GetAll(name string) []string {
	var out []string
	for _, f := range d.Fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}
