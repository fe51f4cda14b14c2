package stacktrace

import (
	"bytes"
	"testing"
	"testing/fstest"

	"classjs/internal/core/errors"
	"classjs/internal/emitter"
	"classjs/internal/sourcemap"
)

func artifactFS(t *testing.T) fstest.MapFS {
	t.Helper()
	lines, err := sourcemap.EncodeLineMap("Shop.js", "Shop.java", []emitter.Mark{
		{Generated: 1, Source: 3},
		{Generated: 2, Source: 5},
		{Generated: 3, Source: 9},
	})
	if err != nil {
		t.Fatalf("encode line map: %v", err)
	}
	var meta bytes.Buffer
	if err := sourcemap.WriteMetadata(&meta, sourcemap.Metadata{Class: "org.app.Shop", JS: "org/app/Shop.js"}); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	return fstest.MapFS{
		"org/app/Shop.js":   {Data: []byte("var Shop = function(){};\n")},
		"org/app/Shop.map":  {Data: lines},
		"org/app/Shop.stjs": {Data: meta.Bytes()},
		// a unit generated without metadata
		"org/app/Plain.map": {Data: lines},
	}
}

func TestReconstructMapsFrames(t *testing.T) {
	trace := "TypeError: x is undefined\n" +
		"at Shop.prototype.buy (http://localhost:8080/org/app/Shop.js:2:10)\n" +
		"   at run (http://localhost:8080/org/app/Shop.js:3:1)\n" +
		"\n"

	frames, err := New(artifactFS(t)).Reconstruct(trace, "\n")
	if err != nil {
		t.Fatalf("reconstruct failed: %v", err)
	}
	want := []Frame{
		{DeclaringType: "org.app.Shop", Member: "buy", File: "Shop.java", Line: 5},
		{DeclaringType: "org.app.Shop", Member: "run", File: "Shop.java", Line: 9},
	}
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d: %v", len(frames), len(want), frames)
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d = %+v, want %+v", i, frames[i], want[i])
		}
	}
	if s := frames[0].String(); s != "org.app.Shop.buy(Shop.java:5)" {
		t.Errorf("unexpected frame text %q", s)
	}
}

func TestReconstructFirstLineFrame(t *testing.T) {
	trace := "at f (http://h/org/app/Shop.js:1:1)\r\nat g (http://h/org/app/Shop.js:3:1)"
	frames, err := New(artifactFS(t)).Reconstruct(trace, "\n")
	if err != nil {
		t.Fatalf("reconstruct failed: %v", err)
	}
	if len(frames) != 2 || frames[0].Member != "f" || frames[0].Line != 3 || frames[1].Line != 9 {
		t.Fatalf("unexpected frames %v", frames)
	}
}

func TestReconstructWithoutArtifacts(t *testing.T) {
	trace := "Error\nat go (http://h/lib/Other.js:12:4)\nat go (http://h/org/app/Plain.js:2:1)"
	frames, err := New(artifactFS(t)).Reconstruct(trace, "")
	if err != nil {
		t.Fatalf("reconstruct failed: %v", err)
	}
	if frames[0] != (Frame{DeclaringType: UnknownClass, Member: "go", File: "Other.js", Line: 12}) {
		t.Errorf("unexpected frame without artifacts %+v", frames[0])
	}
	// the line map still applies without metadata
	if frames[1] != (Frame{DeclaringType: UnknownClass, Member: "go", File: "Plain.js", Line: 5}) {
		t.Errorf("unexpected frame without metadata %+v", frames[1])
	}
	if s := frames[0].String(); s != "<Unknown class>.go(Other.js:12)" {
		t.Errorf("unexpected frame text %q", s)
	}
}

func TestReconstructCustomSeparator(t *testing.T) {
	trace := "boom|at a (http://h/org/app/Shop.js:1:1)|at b (http://h/org/app/Shop.js:2:1)"
	frames, err := New(artifactFS(t)).Reconstruct(trace, "|")
	if err != nil {
		t.Fatalf("reconstruct failed: %v", err)
	}
	if len(frames) != 2 || frames[0].Line != 3 || frames[1].Line != 5 {
		t.Fatalf("unexpected frames %v", frames)
	}
}

func TestReconstructMalformed(t *testing.T) {
	cases := map[string]string{
		"not a frame":   "Error\nat a (http://h/org/app/Shop.js:1:1)\nsomething else",
		"no scheme":     "Error\nat a (org/app/Shop.js:1:1)",
		"no line":       "Error\nat a (http://h/org/app/Shop.js)",
		"bad line":      "Error\nat a (http://h/org/app/Shop.js:x:1)",
		"bad url":       "Error\nat a (http://h/%zz:1:1)",
		"missing paren": "Error\nat a http://h/org/app/Shop.js:1:1",
		"inner blank":   "Error\nat a (http://h/org/app/Shop.js:1:1)\n\nat b (http://h/org/app/Shop.js:2:1)",
	}
	for name, trace := range cases {
		t.Run(name, func(t *testing.T) {
			frames, err := New(artifactFS(t)).Reconstruct(trace, "\n")
			if !errors.IsCode(err, errors.CodeMalformedInput) {
				t.Fatalf("expected malformed input, got %v", err)
			}
			if frames != nil {
				t.Fatalf("no partial frames expected, got %v", frames)
			}
			if _, ok := errors.ContextValue(err, errors.CtxLine); !ok {
				t.Fatal("expected the offending line in the error context")
			}
		})
	}
}

func TestReconstructCorruptArtifact(t *testing.T) {
	fsys := fstest.MapFS{
		"org/Bad.map": {Data: []byte("{corrupt")},
	}
	_, err := New(fsys).Reconstruct("Error\nat a (http://h/org/Bad.js:1:1)", "\n")
	if !errors.IsCode(err, errors.CodeMalformedInput) {
		t.Fatalf("expected corrupt line map to fail, got %v", err)
	}
	if v, _ := errors.ContextValue(err, errors.CtxPath); v != "org/Bad.map" {
		t.Fatalf("expected artifact path in context, got %v", v)
	}
}
