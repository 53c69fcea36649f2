package bigcalc

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestOpPrecs(t *testing.T) {
	// Every operator token the lexer produces needs a binary or postfix
	// meaning, or the parser panics.
	for _, op := range []string{"+", "-", "*", "/", "%", "**", "!"} {
		if binop(op).op == nodeNone && postop(op).op == nodeNone {
			t.Errorf("no binary or postfix operator for %q", op)
		}
	}
	cases := []struct {
		name   string
		hi, lo operator
	}{
		{"pow-over-fact", binop("**"), postop("!")},
		{"fact-over-neg", postop("!"), unop("-")},
		{"neg-over-mul", unop("-"), binop("*")},
		{"mul-over-sub", binop("*"), binop("-")},
		{"add-over-sub", binop("+"), binop("-")},
	}
	for _, c := range cases {
		if c.hi.prec <= c.lo.prec {
			t.Errorf("%s: %+v does not bind tighter than %+v", c.name, c.hi, c.lo)
		}
	}
	if binop("+").prec != binop("*").prec {
		t.Errorf("+ and * have different precedences")
	}
	if l, r := binop("**").lbp(), binop("**").rbp(); l <= r {
		t.Errorf("** not right-associative: lbp %d, rbp %d", l, r)
	}
	for _, op := range []string{"+", "-", "*", "/", "%"} {
		if l, r := binop(op).lbp(), binop(op).rbp(); l >= r {
			t.Errorf("%s not left-associative: lbp %d, rbp %d", op, l, r)
		}
	}
}

// firstdiff finds the first nodes in the trees rooted at a[i] and b[j] that
// differ. The result is -1, -1 if the trees are the same. Grouping nodes are
// skipped unless parens is true.
func firstdiff(a []node, i int, b []node, j int, parens bool) (int, int) {
	if !parens {
		for a[i].kind == nodeParen {
			i = a[i].left
		}
		for b[j].kind == nodeParen {
			j = b[j].left
		}
	}
	x, y := &a[i], &b[j]
	if x.kind != y.kind || x.text != y.text || x.cst != y.cst || x.fn != y.fn {
		return i, j
	}
	if x.kind.arity() >= 1 {
		if p, q := firstdiff(a, x.left, b, y.left, parens); p >= 0 {
			return p, q
		}
	}
	if x.kind.arity() == 2 {
		if p, q := firstdiff(a, x.right, b, y.right, parens); p >= 0 {
			return p, q
		}
	}
	return -1, -1
}

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"num", "1", "1"},
		{"add", "1+2", "(1)+(2)"},
		{"add4", "1+2+3+4", "((1+2)+3)+4"},
		{"sub4", "1-2-3-4", "((1-2)-3)-4"},
		{"mul4", "1*2*3*4", "((1*2)*3)*4"},
		{"div4", "1/2/3/4", "((1/2)/3)/4"},
		{"mod4", "1%2%3%4", "((1%2)%3)%4"},
		{"pow4", "1**2**3**4", "1**(2**(3**4))"},
		{"addmul", "1+2*3", "(1+2)*3"},
		{"muladd", "1*2+3", "(1*2)+3"},
		{"subadd", "1-2+3", "1-(2+3)"},
		{"addsub", "1+2-3", "(1+2)-3"},
		{"submul", "1-2*3", "1-(2*3)"},
		{"mulsub", "1*2-3", "(1*2)-3"},
		{"mulmod", "7%3*2", "(7%3)*2"},
		{"powmul", "2*3**2", "2*(3**2)"},
		{"plus", "+1", "+(1)"},
		{"neg", "-1", "-(1)"},
		{"negneg", "--1", "-(-(1))"},
		{"negpow", "-2**2", "-(2**2)"},
		{"negmul", "-2*3", "(-2)*3"},
		{"negadd", "-2+3", "(-2)+3"},
		{"negfact", "-3!", "-(3!)"},
		{"powneg", "2**-1", "2**(-1)"},
		{"subneg", "1--1", "1-(-1)"},
		{"fact", "3!", "(3)!"},
		{"factfact", "3!!", "(3!)!"},
		{"powfact", "2**3!", "(2**3)!"},
		{"factpow", "3!**2", "(3!)**2"},
		{"mulfact", "2*3!", "2*(3!)"},
		{"const", "pi*2", "(pi)*2"},
		{"call", "sin(1)+2", "(sin(1))+2"},
		{"callfact", "sqrt(16)!", "(sqrt(16))!"},
		{"negcall", "-sqrt(4)", "-(sqrt(4))"},
		{"callarg", "exp(1+2*3)", "exp((1+2)*3)"},
		{"spaces", " 1 +\n2 ", "1+2"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(c.src)
			if err != nil {
				t.Fatalf("error parsing %q: %v", c.src, err)
			}
			b, err := Parse(c.want)
			if err != nil {
				t.Fatalf("error parsing %q: %v", c.want, err)
			}
			if i, j := firstdiff(a.nodes, len(a.nodes)-1, b.nodes, len(b.nodes)-1, false); i >= 0 {
				t.Errorf("%q parsed as %v, want %v; first difference at %v vs %v", c.src, a, b, a.nodes[i].span, b.nodes[j].span)
			}
		})
	}
}

func TestParseExact(t *testing.T) {
	type nd struct {
		kind        nodeKind
		start, end  int
		left, right int
	}
	cases := []struct {
		name  string
		src   string
		nodes []nd
	}{
		{"num", "12", []nd{{nodeNum, 0, 2, -1, -1}}},
		{"pow", "2 ** 3 ** 2", []nd{
			{nodeNum, 0, 1, -1, -1},
			{nodeNum, 5, 6, -1, -1},
			{nodeNum, 10, 11, -1, -1},
			{nodePow, 5, 11, 1, 2},
			{nodePow, 0, 11, 0, 3},
		}},
		{"paren", "(1 + 2)", []nd{
			{nodeNum, 1, 2, -1, -1},
			{nodeNum, 5, 6, -1, -1},
			{nodeAdd, 1, 6, 0, 1},
			{nodeParen, 0, 7, 2, -1},
		}},
		{"negfact", "-3!", []nd{
			{nodeNum, 1, 2, -1, -1},
			{nodeFact, 1, 3, 0, -1},
			{nodeNeg, 0, 3, 1, -1},
		}},
		{"call", "sin(pi)", []nd{
			{nodeConst, 4, 6, -1, -1},
			{nodeCall, 0, 7, 0, -1},
		}},
		{"e", "e", []nd{{nodeConst, 0, 1, -1, -1}}},
		{"mixed", "1 - 2 * 3", []nd{
			{nodeNum, 0, 1, -1, -1},
			{nodeNum, 4, 5, -1, -1},
			{nodeNum, 8, 9, -1, -1},
			{nodeMul, 4, 9, 1, 2},
			{nodeSub, 0, 9, 0, 3},
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(c.src)
			if err != nil {
				t.Fatalf("error parsing %q: %v", c.src, err)
			}
			if len(a.nodes) != len(c.nodes) {
				t.Fatalf("%q parsed to %d nodes, want %d: %v", c.src, len(a.nodes), len(c.nodes), a)
			}
			for i, want := range c.nodes {
				got := a.nodes[i]
				if got.kind != want.kind || got.span != (Span{want.start, want.end}) || got.left != want.left || got.right != want.right {
					t.Errorf("node %d: want %+v, got %v@%v children %d, %d", i, want, got.kind, got.span, got.left, got.right)
				}
			}
		})
	}
}

func TestParseArena(t *testing.T) {
	srcs := []string{
		"1",
		"1 + 2 * 3",
		"-(1 - 2)! ** sqrt(4) % pi",
		"((((1))))",
		"sin(cos(tan(exp(sqrt(2)))))",
		"2 ** 3 ** 4 ** 5 - 1 - 2 - 3",
		"+-+-1!!!",
	}
	for _, src := range srcs {
		a, err := Parse(src)
		if err != nil {
			t.Errorf("error parsing %q: %v", src, err)
			continue
		}
		// Every node except the root has exactly one parent, which follows it.
		parents := make([]int, len(a.nodes))
		for i, n := range a.nodes {
			kids := []int{n.left, n.right}[:max(n.kind.arity(), 0)]
			if n.kind.arity() < 0 {
				t.Errorf("%q: node %d has invalid kind %v", src, i, n.kind)
			}
			for _, k := range kids {
				if k < 0 || k >= i {
					t.Errorf("%q: node %d has child %d", src, i, k)
					continue
				}
				parents[k]++
			}
			if n.kind.arity() < 2 && n.right != -1 {
				t.Errorf("%q: node %d of kind %v has right child %d", src, i, n.kind, n.right)
			}
			if n.kind.arity() < 1 && n.left != -1 {
				t.Errorf("%q: node %d of kind %v has left child %d", src, i, n.kind, n.left)
			}
			if n.span.Start < 0 || n.span.End > len(src) || n.span.Start >= n.span.End {
				t.Errorf("%q: node %d has bad span %v", src, i, n.span)
			}
		}
		for i, p := range parents {
			want := 1
			if i == len(parents)-1 {
				want = 0
			}
			if p != want {
				t.Errorf("%q: node %d has %d parents", src, i, p)
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  any
		at   Span
		// re is a list of regular expressions that the error message must
		// match.
		re []string
	}{
		{"empty", "", new(*EmptyExpressionError), Span{0, 0}, []string{`no expression$`}},
		{"emptyparen", "()", new(*EmptyExpressionError), Span{1, 2}, []string{`no expression`, `"\)"`}},
		{"dangling", "1 +", new(*EmptyExpressionError), Span{3, 3}, []string{`no expression at end`}},
		{"danglingneg", "-", new(*EmptyExpressionError), Span{1, 1}, []string{`at end`}},
		{"unclosed", "(1 + 2", new(*BracketError), Span{0, 1}, []string{`^0-1:`, `(?i)\bopen bracket\b`, `\(`}},
		{"unclosedinner", "((1)", new(*BracketError), Span{0, 1}, []string{`\(`}},
		{"unclosedempty", "(", new(*BracketError), Span{0, 1}, []string{`(?i)\bbracket\b`}},
		{"unclosedcall", "sqrt(4", new(*BracketError), Span{4, 5}, []string{`\(`}},
		{"stray", "1)", new(*BracketError), Span{1, 2}, []string{`(?i)\bclose bracket\b`, `\)`}},
		{"straycall", "sin(1))", new(*BracketError), Span{6, 7}, []string{`\)`}},
		{"trailing", "1 2", new(*TokenError), Span{2, 3}, []string{`"2"`, `end of input`}},
		{"trailingparen", "2 (3)", new(*TokenError), Span{2, 3}, []string{`"\("`}},
		{"innerjunk", "(1 2)", new(*TokenError), Span{3, 4}, []string{`"2"`, `close bracket`}},
		{"binaryprefix", "*2", new(*TokenError), Span{0, 1}, []string{`"\*"`, `operand`}},
		{"factprefix", "!3", new(*TokenError), Span{0, 1}, []string{`"!"`}},
		{"funcnoparen", "sqrt 4", new(*TokenError), Span{5, 6}, []string{`"4"`, `\( after sqrt`}},
		{"funceof", "sqrt", new(*TokenError), Span{4, 4}, []string{`end of input`, `\( after sqrt`}},
		{"funcconst", "sin pi", new(*TokenError), Span{4, 6}, []string{`"pi"`}},
		{"badchar", "1 + $", new(*LexError), Span{4, 5}, []string{`invalid token "\$"`}},
		{"point", "1.", new(*LexError), Span{1, 2}, []string{`"\."`}},
		{"unicode", "1 + ×", new(*LexError), Span{4, 6}, []string{`"×"`}},
		{"badutf8", "1+\xff", new(*LexError), Span{2, 3}, []string{`invalid token`}},
		{"unknownfunc", "foo(1)", new(*LexError), Span{0, 3}, []string{`(?i)\bidentifier\b`, `"foo"`}},
		{"unknownconst", "2 * x", new(*LexError), Span{4, 5}, []string{`(?i)\bidentifier\b`, `"x"`}},
		{"trailingident", "2 x", new(*LexError), Span{2, 3}, []string{`"x"`}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Parse(c.src)
			if err == nil {
				t.Fatalf("%q parsed to %v, expected an error", c.src, a)
			}
			if a != nil {
				t.Errorf("%q gave both an error and %v", c.src, a)
			}
			if !errors.As(err, c.err) {
				t.Errorf("%q gave wrong error type %T (%v)", c.src, err, err)
			}
			var ie InputError
			if !errors.As(err, &ie) {
				t.Fatalf("%q gave %T, which is not an InputError", c.src, err)
			}
			if ie.Span() != c.at {
				t.Errorf("%q: error %q at %v, want %v", c.src, err, ie.Span(), c.at)
			}
			for _, re := range c.re {
				if !regexp.MustCompile(re).MatchString(err.Error()) {
					t.Errorf("%q: error %q doesn't match %#q", c.src, err, re)
				}
			}
		})
	}
}

func TestParseDepth(t *testing.T) {
	parens := strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100)
	if _, err := Parse(parens, MaxDepth(101)); err != nil {
		t.Errorf("100 brackets failed with depth 101: %v", err)
	}
	_, err := Parse(parens, MaxDepth(100))
	var de *DepthError
	if !errors.As(err, &de) {
		t.Fatalf("100 brackets with depth 100 gave %v, not a DepthError", err)
	}
	if de.Max != 100 {
		t.Errorf("wrong max depth %d", de.Max)
	}
	if de.At != (Span{100, 101}) {
		t.Errorf("depth error at %v", de.At)
	}

	// Prefix operators and right-associative operators nest as well.
	deep := []string{
		strings.Repeat("-", 2*DefaultMaxDepth) + "1",
		strings.Repeat("2**", 2*DefaultMaxDepth) + "2",
		strings.Repeat("sqrt(", 2*DefaultMaxDepth) + "1" + strings.Repeat(")", 2*DefaultMaxDepth),
	}
	for _, src := range deep {
		_, err := Parse(src)
		if !errors.As(err, &de) {
			t.Errorf("%.12q... gave %v, not a DepthError", src, err)
		}
	}

	// Left-associative chains and postfix operators do not.
	wide := []string{
		strings.Repeat("1+", 2*DefaultMaxDepth) + "1",
		"3" + strings.Repeat("!", 2*DefaultMaxDepth),
	}
	for _, src := range wide {
		if _, err := Parse(src); err != nil {
			t.Errorf("%.12q... failed: %v", src, err)
		}
	}
}

func TestParseOptions(t *testing.T) {
	a, err := Parse("0.1", ParsePrec(200))
	if err != nil {
		t.Fatal(err)
	}
	if p := a.nodes[0].num.Prec(); p != 200 {
		t.Errorf("literal has precision %d, want 200", p)
	}
	ctx := NewContext(Prec(100))
	a, err = Parse("0.1", ParsePrec(200), ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p := a.nodes[0].num.Prec(); p != 100 {
		t.Errorf("literal has precision %d, want context's 100", p)
	}
	for _, f := range []func(){
		func() { ParsePrec(0) },
		func() { MaxDepth(0) },
		func() { MaxDepth(-1) },
		func() { Prec(0) },
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Error("invalid option didn't panic")
				}
			}()
			f()
		}()
	}
}

func TestExprString(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1", "1"},
		{"1.50", "1.50"},
		{"1+2*3", "((1 + 2) * 3)"},
		{"2**3**2", "(2 ** (3 ** 2))"},
		{"-3!", "(-(3!))"},
		{"(1)", "(1)"},
		{"((1 - 2))", "(((1 - 2)))"},
		{"sin(pi)%e", "(sin(pi) % e)"},
		{"+inf / nan", "((+inf) / nan)"},
	}
	for _, c := range cases {
		a, err := Parse(c.src)
		if err != nil {
			t.Errorf("error parsing %q: %v", c.src, err)
			continue
		}
		s := a.String()
		if s != c.want {
			t.Errorf("%q formatted as %q, want %q", c.src, s, c.want)
		}
		// Formatting then reparsing gives the same tree.
		b, err := Parse(s)
		if err != nil {
			t.Errorf("error reparsing %q from %q: %v", s, c.src, err)
			continue
		}
		if i, j := firstdiff(a.nodes, len(a.nodes)-1, b.nodes, len(b.nodes)-1, false); i >= 0 {
			t.Errorf("%q reparsed from %q as %v; first difference at %v vs %v", s, c.src, b, a.nodes[i].span, b.nodes[j].span)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	src := strings.Repeat("sin(1.5 ** 2 - 3!) * ", 100) + "pi"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(src); err != nil {
			b.Fatal(err)
		}
	}
}
