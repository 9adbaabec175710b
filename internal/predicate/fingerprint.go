package predicate

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"time"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// FingerprintDomain separates predicate fingerprints from other SHA-256
// digests. The version suffix allows the encoding to change.
const FingerprintDomain = "matcher/predicate/v1"

// Canonical renders p as canonical JSON:
//
//	leaf      {"attr":<model key>,"op":<token>,"value":<value>}
//	composite {"and"|"or"|"not":[<children>]}
//
// Object keys are sorted by UTF-16 code units, strings are NFC normalized
// and HTML characters are not escaped. Dates render as {"date":<epoch ms>}
// and items with an id render as that id. Thunks are resolved, so a tree
// with computed values has a different form each time they change.
//
// Aliases are not part of the form: the same tree built with different
// allocators has the same canonical encoding.
func Canonical(p *Predicate) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot encode nil predicate")
	}
	var buf bytes.Buffer
	if err := writePredicate(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fingerprint returns the hex SHA-256 of FingerprintDomain, a zero byte and
// the canonical encoding of p.
func Fingerprint(p *Predicate) (string, error) {
	data, err := Canonical(p)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(FingerprintDomain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writePredicate(buf *bytes.Buffer, p *Predicate) error {
	if p.kind == KindLeaf {
		op, err := p.comparator.MarshalText()
		if err != nil {
			return err
		}
		buf.WriteString(`{"attr":`)
		writeString(buf, p.attr.ModelKey)
		buf.WriteString(`,"op":`)
		writeString(buf, string(op))
		buf.WriteString(`,"value":`)
		if err := writeValue(buf, Resolve(p.value)); err != nil {
			return fmt.Errorf("%s: %w", p.attr.ModelKey, err)
		}
		buf.WriteByte('}')
		return nil
	}

	buf.WriteByte('{')
	writeString(buf, p.kind.String())
	buf.WriteString(":[")
	for i, c := range p.children {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writePredicate(buf, c); err != nil {
			return err
		}
	}
	buf.WriteString("]}")
	return nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case string:
		writeString(buf, val)
		return nil
	case bool:
		buf.WriteString(strconv.FormatBool(val))
		return nil
	case time.Time:
		buf.WriteString(`{"date":`)
		buf.WriteString(strconv.FormatInt(val.UnixMilli(), 10))
		buf.WriteByte('}')
		return nil
	case Identifier:
		writeString(buf, val.ID())
		return nil
	case map[string]any:
		return writeObject(buf, val)
	case Fields:
		return writeObject(buf, val)
	}

	if n, ok := toNumber(v); ok {
		return writeNumber(buf, n)
	}
	if seq, ok := Sequence(v); ok {
		buf.WriteByte('[')
		for i, e := range seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, Resolve(e)); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	}
	if id := Identity(v); !reflect.DeepEqual(id, v) {
		return writeValue(buf, id)
	}
	return fmt.Errorf("unsupported value of type %T", v)
}

func writeNumber(buf *bytes.Buffer, n number) error {
	switch n.kind {
	case signedNumber:
		buf.WriteString(strconv.FormatInt(n.i, 10))
	case unsignedNumber:
		buf.WriteString(strconv.FormatUint(n.u, 10))
	default:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return fmt.Errorf("number %v has no JSON form", n.f)
		}
		// Integral floats encode like ints so 3 and 3.0 agree.
		if n.f == math.Trunc(n.f) && math.Abs(n.f) < 1e15 {
			buf.WriteString(strconv.FormatInt(int64(n.f), 10))
		} else {
			buf.WriteString(strconv.FormatFloat(n.f, 'g', -1, 64))
		}
	}
	return nil
}

func writeObject[M ~map[string]any](buf *bytes.Buffer, m M) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, k)
		buf.WriteByte(':')
		if err := writeValue(buf, Resolve(m[k])); err != nil {
			return fmt.Errorf("%q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeString encodes s NFC normalized, without HTML escaping.
func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(norm.NFC.String(s))
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
}

// compareUTF16 orders strings by UTF-16 code units.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < min(len(a16), len(b16)); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}
