package render

import (
	"strings"
	"testing"

	"captionforge/style"
)

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello world", "hello world"},
		{"it's `fine` $now", "its fine now"},
		{"“smart” and ‘quotes’", "smart and quotes"},
		{"  padded  ", "padded"},
		{"line1\r\nline2", "line1\nline2"},
	}
	for _, c := range cases {
		if got := SanitizeText(c.in); got != c.want {
			t.Fatalf("SanitizeText(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestEscapeDrawtext(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a:b", `a\:b`},
		{`back\slash`, `back\\slash`},
		{`both\:`, `both\\\:`},
	}
	for _, c := range cases {
		if got := escapeDrawtext(c.in); got != c.want {
			t.Fatalf("escapeDrawtext(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestPlanFiltersOrderAndShapes(t *testing.T) {
	e := testEngine(t)

	st := style.Default()
	st.BackgroundEnabled = true
	st.BorderWidth = 2
	st.ShadowX, st.ShadowY = 2, 2

	plan, _, lines := e.BuildPlanFor(st, 1080, 1920, "hello there", style.FineOffset{})
	if len(lines) == 0 {
		t.Fatal("no lines produced")
	}

	chain := e.planFilters(plan)
	parts := strings.Split(chain, ",")

	if !strings.HasPrefix(parts[0], "drawbox=") {
		t.Fatalf("first filter = %q; want drawbox", parts[0])
	}
	// Per line: shadow, outline, fill, each a drawtext.
	if want := 1 + 3*len(lines); len(parts) != want {
		t.Fatalf("got %d filters; want %d", len(parts), want)
	}
	for _, p := range parts[1:] {
		if !strings.HasPrefix(p, "drawtext=") {
			t.Fatalf("filter %q is not drawtext", p)
		}
	}

	// The outline pass uses a transparent fill with a border.
	outline := parts[2]
	if !strings.Contains(outline, "fontcolor=0x000000@0.0") || !strings.Contains(outline, "borderw=2") {
		t.Fatalf("outline filter %q missing transparent fill or border width", outline)
	}
}

func TestPlanFiltersWithoutFontFileUsesFamily(t *testing.T) {
	e := testEngine(t)

	st := style.Default()
	plan, _, _ := e.BuildPlanFor(st, 1080, 1920, "hi", style.FineOffset{})
	chain := e.planFilters(plan)
	if !strings.Contains(chain, "font=Sans") {
		t.Fatalf("chain %q does not fall back to a font family", chain)
	}
}

func TestBuildPlanForWrapsAtMaxTextWidth(t *testing.T) {
	e := testEngine(t)

	st := style.Default()
	st.MaxTextWidthPercent = 10 // 108px at 1080 wide

	_, _, lines := e.BuildPlanFor(st, 1080, 1920, "one two three four", style.FineOffset{})
	if len(lines) < 2 {
		t.Fatalf("got %d lines; want wrapping at 10%% width", len(lines))
	}
}

func TestBuildPlanForSanitizes(t *testing.T) {
	e := testEngine(t)

	st := style.Default()
	plan, _, lines := e.BuildPlanFor(st, 1080, 1920, "hi `$there`", style.FineOffset{})
	if len(lines) != 1 || lines[0] != "hi there" {
		t.Fatalf("lines = %q; want sanitized single line", lines)
	}
	for _, op := range plan.Ops {
		if strings.ContainsAny(op.Text, "`$") {
			t.Fatalf("unsafe characters survived into the plan: %q", op.Text)
		}
	}
}

func TestPlanFiltersBoxUsesHexColor(t *testing.T) {
	e := testEngine(t)

	st := style.Default()
	st.BackgroundEnabled = true
	st.BackgroundColor = "#112233"

	plan, _, _ := e.BuildPlanFor(st, 1080, 1920, "hi", style.FineOffset{})
	chain := e.planFilters(plan)
	if !strings.Contains(chain, "color=0x112233@0.50") {
		t.Fatalf("chain %q missing converted drawbox color", chain)
	}
}

func TestPlanOpsMatchRasterOps(t *testing.T) {
	// The same plan feeds both renderers; this guards the shared geometry
	// against one path growing private adjustments.
	e := testEngine(t)

	st := style.Default()
	plan1, lay1, _ := e.BuildPlanFor(st, 720, 1280, "same text", style.FineOffset{Y: 20})
	plan2, lay2, _ := e.BuildPlanFor(st, 720, 1280, "same text", style.FineOffset{Y: 20})

	if len(plan1.Ops) != len(plan2.Ops) {
		t.Fatalf("plans differ in length: %d vs %d", len(plan1.Ops), len(plan2.Ops))
	}
	for i := range plan1.Ops {
		if plan1.Ops[i] != plan2.Ops[i] {
			t.Fatalf("op %d differs between identical builds", i)
		}
	}
	if lay1.AnchorY != lay2.AnchorY {
		t.Fatalf("anchors differ: %g vs %g", lay1.AnchorY, lay2.AnchorY)
	}
}
