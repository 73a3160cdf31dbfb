// ═══════════════════════════════════════════════════════════════════════════════
// SERIALIZATION: snapshotting and restoring a MemStore
// ═══════════════════════════════════════════════════════════════════════════════
// A custom length-prefixed binary format, in the same encoding/binary +
// bytes.Buffer idiom the teacher's Encode/Decode used (serialization.go in
// the teacher). Rather than serialize a PostingChain's tower/pointer
// structure node by node, this stores each (field, term)'s flat, sorted
// occurrence list and rebuilds the chain via ordinary Insert on decode:
// tower height is only a lookup-speed concern, never a correctness one
// (Insert/PositionsForDoc only depend on key order), so re-deriving it on
// load is simpler than reconstructing node indices and just as correct.
// ═══════════════════════════════════════════════════════════════════════════════

package ember

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

const storeMagic = "EMBR"
const storeVersion = uint32(1)

// Encode snapshots the store to a self-contained byte slice.
func (m *MemStore) Encode() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(storeMagic)
	if err := binary.Write(&buf, binary.BigEndian, storeVersion); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint32(m.nextDocID)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, m.generation); err != nil {
		return nil, err
	}

	if err := encodeDocs(&buf, m.docs); err != nil {
		return nil, err
	}
	if err := encodeFieldNorms(&buf, m.fieldNorms); err != nil {
		return nil, err
	}
	if err := encodePostings(&buf, m.postings); err != nil {
		return nil, err
	}
	if err := encodeBitmap(&buf, m.deleted); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode restores a MemStore's state from a byte slice produced by Encode.
// The store's analyzer is left untouched; only documents, postings, norms,
// deletions and counters are replaced.
func (m *MemStore) Decode(data []byte) error {
	r := bytes.NewReader(data)
	magic := make([]byte, len(storeMagic))
	if _, err := r.Read(magic); err != nil {
		return wrapErr(IOError, err)
	}
	if string(magic) != storeMagic {
		return wrapErr(IOError, fmt.Errorf("bad store magic %q", magic))
	}
	var version uint32
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return wrapErr(IOError, err)
	}
	if version != storeVersion {
		return wrapErr(IOError, fmt.Errorf("unsupported store version %d", version))
	}

	var nextDocID uint32
	if err := binary.Read(r, binary.BigEndian, &nextDocID); err != nil {
		return wrapErr(IOError, err)
	}
	var generation uint64
	if err := binary.Read(r, binary.BigEndian, &generation); err != nil {
		return wrapErr(IOError, err)
	}

	docs, err := decodeDocs(r)
	if err != nil {
		return wrapErr(IOError, err)
	}
	fieldNorms, err := decodeFieldNorms(r)
	if err != nil {
		return wrapErr(IOError, err)
	}
	postingOccurrences, err := decodePostings(r)
	if err != nil {
		return wrapErr(IOError, err)
	}
	deleted, err := decodeBitmap(r)
	if err != nil {
		return wrapErr(IOError, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextDocID = int(nextDocID)
	m.generation = generation
	m.docs = docs
	m.fieldNorms = fieldNorms
	m.deleted = deleted
	m.docBitmaps = make(map[fieldTerm]*roaring.Bitmap)
	m.postings = make(map[fieldTerm]*PostingChain)
	for ft, occs := range postingOccurrences {
		bm := roaring.NewBitmap()
		pc := NewPostingChain()
		for _, occ := range occs {
			bm.Add(uint32(occ.doc))
			pc.Insert(occ.doc, occ.offset)
		}
		m.docBitmaps[ft] = bm
		m.postings[ft] = pc
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

func writeBool(buf *bytes.Buffer, b bool) error {
	v := byte(0)
	if b {
		v = 1
	}
	return buf.WriteByte(v)
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}

func encodeDocs(buf *bytes.Buffer, docs map[int]Document) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(docs))); err != nil {
		return err
	}
	for docID, d := range docs {
		if err := binary.Write(buf, binary.BigEndian, uint32(docID)); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.BigEndian, uint32(len(d.Fields))); err != nil {
			return err
		}
		for _, f := range d.Fields {
			if err := writeString(buf, f.Name); err != nil {
				return err
			}
			if err := writeString(buf, f.Value); err != nil {
				return err
			}
			if err := writeBool(buf, f.Indexed); err != nil {
				return err
			}
			if err := writeBool(buf, f.Stored); err != nil {
				return err
			}
			if err := writeBool(buf, f.Analyzed); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeDocs(r *bytes.Reader) (map[int]Document, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make(map[int]Document, n)
	for i := uint32(0); i < n; i++ {
		var docID, numFields uint32
		if err := binary.Read(r, binary.BigEndian, &docID); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &numFields); err != nil {
			return nil, err
		}
		fields := make([]Field, numFields)
		for j := uint32(0); j < numFields; j++ {
			name, err := readString(r)
			if err != nil {
				return nil, err
			}
			value, err := readString(r)
			if err != nil {
				return nil, err
			}
			indexed, err := readBool(r)
			if err != nil {
				return nil, err
			}
			stored, err := readBool(r)
			if err != nil {
				return nil, err
			}
			analyzed, err := readBool(r)
			if err != nil {
				return nil, err
			}
			fields[j] = Field{Name: name, Value: value, Indexed: indexed, Stored: stored, Analyzed: analyzed}
		}
		out[int(docID)] = Document{Fields: fields}
	}
	return out, nil
}

func encodeFieldNorms(buf *bytes.Buffer, norms map[string]map[int]byte) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(norms))); err != nil {
		return err
	}
	for field, byDoc := range norms {
		if err := writeString(buf, field); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.BigEndian, uint32(len(byDoc))); err != nil {
			return err
		}
		for docID, b := range byDoc {
			if err := binary.Write(buf, binary.BigEndian, uint32(docID)); err != nil {
				return err
			}
			if err := buf.WriteByte(b); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeFieldNorms(r *bytes.Reader) (map[string]map[int]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make(map[string]map[int]byte, n)
	for i := uint32(0); i < n; i++ {
		field, err := readString(r)
		if err != nil {
			return nil, err
		}
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return nil, err
		}
		byDoc := make(map[int]byte, count)
		for j := uint32(0); j < count; j++ {
			var docID uint32
			if err := binary.Read(r, binary.BigEndian, &docID); err != nil {
				return nil, err
			}
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			byDoc[int(docID)] = b
		}
		out[field] = byDoc
	}
	return out, nil
}

type postingOccurrence struct {
	doc    int
	offset int
}

func encodePostings(buf *bytes.Buffer, postings map[fieldTerm]*PostingChain) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(postings))); err != nil {
		return err
	}
	for ft, pc := range postings {
		if err := writeString(buf, ft.Field); err != nil {
			return err
		}
		if err := writeString(buf, ft.Text); err != nil {
			return err
		}
		occs := flattenPostingChain(pc)
		if err := binary.Write(buf, binary.BigEndian, uint32(len(occs))); err != nil {
			return err
		}
		for _, occ := range occs {
			if err := binary.Write(buf, binary.BigEndian, uint32(occ.doc)); err != nil {
				return err
			}
			if err := binary.Write(buf, binary.BigEndian, uint32(occ.offset)); err != nil {
				return err
			}
		}
	}
	return nil
}

func flattenPostingChain(pc *PostingChain) []postingOccurrence {
	var out []postingOccurrence
	pc.Each(func(doc, pos int) {
		out = append(out, postingOccurrence{doc: doc, offset: pos})
	})
	return out
}

func decodePostings(r *bytes.Reader) (map[fieldTerm][]postingOccurrence, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make(map[fieldTerm][]postingOccurrence, n)
	for i := uint32(0); i < n; i++ {
		field, err := readString(r)
		if err != nil {
			return nil, err
		}
		term, err := readString(r)
		if err != nil {
			return nil, err
		}
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return nil, err
		}
		occs := make([]postingOccurrence, count)
		for j := uint32(0); j < count; j++ {
			var docID, offset uint32
			if err := binary.Read(r, binary.BigEndian, &docID); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &offset); err != nil {
				return nil, err
			}
			occs[j] = postingOccurrence{doc: int(docID), offset: int(offset)}
		}
		out[fieldTerm{Field: field, Text: term}] = occs
	}
	return out, nil
}

func encodeBitmap(buf *bytes.Buffer, bm *roaring.Bitmap) error {
	arr := bm.ToArray()
	if err := binary.Write(buf, binary.BigEndian, uint32(len(arr))); err != nil {
		return err
	}
	for _, v := range arr {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeBitmap(r *bytes.Reader) (*roaring.Bitmap, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	bm := roaring.NewBitmap()
	for i := uint32(0); i < n; i++ {
		var v uint32
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		bm.Add(v)
	}
	return bm, nil
}
