package sourcemap

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"classjs/internal/core/errors"
	"classjs/internal/emitter"
)

func TestEncodeLineMapMappings(t *testing.T) {
	marks := []emitter.Mark{
		{Generated: 1, Source: 1},
		{Generated: 2, Source: 2},
		{Generated: 4, Source: 3},
		{Generated: 5, Source: 1},
	}
	data, err := EncodeLineMap("Shop.js", "Shop.java", marks)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("encoded map is not JSON: %v", err)
	}
	if doc.Version != 3 || doc.File != "Shop.js" || len(doc.Sources) != 1 || doc.Sources[0] != "Shop.java" {
		t.Fatalf("unexpected header %+v", doc)
	}
	if want := "AAAC;AACA;;AACA;AAFA"; doc.Mappings != want {
		t.Fatalf("mappings = %q, want %q", doc.Mappings, want)
	}
}

func TestEncodeLineMapRejectsUnorderedMarks(t *testing.T) {
	_, err := EncodeLineMap("A.js", "A.java", []emitter.Mark{{Generated: 3, Source: 1}, {Generated: 2, Source: 2}})
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWriteVLQ(t *testing.T) {
	cases := map[int]string{0: "A", 1: "C", -1: "D", 15: "e", 16: "gB", -17: "jB", 1000: "w+B"}
	for n, want := range cases {
		var b strings.Builder
		writeVLQ(&b, n)
		if b.String() != want {
			t.Errorf("writeVLQ(%d) = %q, want %q", n, b.String(), want)
		}
	}
}

func TestLineMapRoundTrip(t *testing.T) {
	marks := []emitter.Mark{
		{Generated: 1, Source: 1},
		{Generated: 2, Source: 2},
		{Generated: 4, Source: 7},
	}
	data, err := EncodeLineMap("Shop.js", "Shop.java", marks)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	lm, err := ParseLineMap("org/app/Shop.map", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if lm.File() != "Shop.js" {
		t.Fatalf("unexpected file %q", lm.File())
	}

	for generated, want := range map[int]int{1: 1, 2: 2, 3: 2, 4: 7} {
		got, ok := lm.SourceLine(generated)
		if !ok || got != want {
			t.Errorf("SourceLine(%d) = %d, %v; want %d", generated, got, ok, want)
		}
	}
	if _, ok := lm.SourceLine(9); ok {
		t.Error("lines past the last mark must not be mapped")
	}
}

func TestParseLineMapCorrupt(t *testing.T) {
	_, err := ParseLineMap("A.map", []byte("{not json"))
	if !errors.IsCode(err, errors.CodeMalformedInput) {
		t.Fatalf("expected malformed input, got %v", err)
	}
	if v, ok := errors.ContextValue(err, errors.CtxPath); !ok || v != "A.map" {
		t.Fatalf("expected path context, got %v", v)
	}

	_, err = ParseLineMap("A.map", []byte(`{"version":2,"mappings":""}`))
	if !errors.IsCode(err, errors.CodeMalformedInput) {
		t.Fatalf("expected unsupported version to be malformed, got %v", err)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	in := Metadata{Class: "org.app.Shop", Source: "org/app/Shop.java", JS: "org/app/Shop.js"}
	var buf bytes.Buffer
	if err := WriteMetadata(&buf, in); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "class = org.app.Shop") {
		t.Fatalf("unexpected metadata text %q", buf.String())
	}

	out, err := ReadMetadata(buf.Bytes())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestReadMetadataMissingClass(t *testing.T) {
	m, err := ReadMetadata([]byte("# generated\njs=Foo.js\n"))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if m.Class != "" || m.JS != "Foo.js" {
		t.Fatalf("unexpected metadata %+v", m)
	}
}
