package emitter

import "testing"

func TestWriterIndentation(t *testing.T) {
	w := New()
	w.PrintLn("var A = function() {")
	w.Indent()
	w.PrintLn("this.x = 1;")
	w.PrintLn()
	w.Print("if (x) {\ny();")
	w.PrintLn()
	w.Unindent()
	w.PrintLn("};")

	want := "var A = function() {\n    this.x = 1;\n\n    if (x) {\n    y();\n};\n"
	if got := w.String(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if w.Line() != 7 {
		t.Fatalf("expected to be on line 7, got %d", w.Line())
	}
}

func TestWriterUnindentFloor(t *testing.T) {
	w := New()
	w.Unindent()
	w.PrintLn("x")
	if w.String() != "x\n" {
		t.Fatalf("unexpected output %q", w.String())
	}
}

func TestWriterMarks(t *testing.T) {
	w := New()
	w.Mark(3)
	w.Print("a")
	w.Mark(4)
	w.PrintLn()
	w.PrintLn("b")
	w.Mark(0)
	w.Mark(9)
	w.PrintLn("c")

	marks := w.Marks()
	want := []Mark{{Generated: 1, Source: 3}, {Generated: 3, Source: 9}}
	if len(marks) != len(want) {
		t.Fatalf("marks = %+v, want %+v", marks, want)
	}
	for i := range want {
		if marks[i] != want[i] {
			t.Fatalf("marks = %+v, want %+v", marks, want)
		}
	}
	marks[0].Source = 100
	if w.Marks()[0].Source != 3 {
		t.Fatal("Marks must return a copy")
	}
}

func TestWriterEndLine(t *testing.T) {
	w := New()
	w.EndLine()
	w.Print("a;")
	w.EndLine()
	w.EndLine()
	w.Print("b;")
	w.EndLine()
	if got := w.String(); got != "a;\nb;\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
